package devbackend

import (
	"fmt"
	"time"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// Fixture sizes.
const (
	FixtureMerchants   = 5
	FixtureStores      = 30
	FixtureStoreGroups = 4
	FixtureAffiliates  = 6
	FixtureAccounts    = 4
	FixtureLeads       = 40
	FixtureOrders      = 25
	FixtureCustomers   = 30
)

var (
	states  = []string{"Karnataka", "Maharashtra", "Tamil Nadu", "Delhi", "Telangana"}
	lenders = []string{"FastCredit", "Kuber Finance", "Nidhi Capital", "Lakshmi Loans"}
	names   = []string{"Asha", "Ravi", "Meera", "Arjun", "Kiran", "Divya", "Sanjay", "Pooja"}
)

// seed fills the store with deterministic fixture data dated back from
// the server clock, one record per day.
func (s *Server) seed() {
	now := s.now().UTC().Truncate(time.Second)
	day := func(i int) string { return now.AddDate(0, 0, -i).Format(time.RFC3339) }

	s.data = make(map[models.Entity][]models.Record)
	s.offers = make(map[string][]models.Record)

	for i := range FixtureMerchants {
		s.data[models.EntityMerchant] = append(s.data[models.EntityMerchant], models.Record{
			"_id":        fmt.Sprintf("merchant-%02d", i+1),
			"MerchantId": fmt.Sprintf("MER%04d", i+1),
			"Name":       fmt.Sprintf("%s Retail", names[i%len(names)]),
			"Address":    fmt.Sprintf("%d MG Road", 10+i),
			"Phone":      fmt.Sprintf("98450%05d", i+1),
			"Email":      fmt.Sprintf("owner%d@retail%d.co.in", i+1, i+1),
			"State":      states[i%len(states)],
			"GSTIN":      fmt.Sprintf("29ABCDE%04dF1Z5", i+1),
			"createdAt":  day(i * 7),
			"updatedAt":  day(i),
		})
	}

	for i := range FixtureStoreGroups {
		s.data[models.EntityStoreGroup] = append(s.data[models.EntityStoreGroup], models.Record{
			"_id":         fmt.Sprintf("group-%02d", i+1),
			"GroupId":     fmt.Sprintf("GRP%03d", i+1),
			"Name":        fmt.Sprintf("Group %c", 'A'+i),
			"Phone":       fmt.Sprintf("97400%05d", i+1),
			"Email":       fmt.Sprintf("group%d@lm.local", i+1),
			"Description": "Regional store group",
			"IsActive":    i%3 != 2,
			"createdAt":   day(60 + i),
			"updatedAt":   day(i),
		})
	}

	for i := range FixtureAffiliates {
		s.data[models.EntityAffiliate] = append(s.data[models.EntityAffiliate], models.Record{
			"_id":         fmt.Sprintf("affiliate-%02d", i+1),
			"AffiliateId": fmt.Sprintf("AFF%03d", i+1),
			"Name":        fmt.Sprintf("%s Partners", names[(i+3)%len(names)]),
			"Phone":       fmt.Sprintf("96320%05d", i+1),
			"Email":       fmt.Sprintf("aff%d@partners.in", i+1),
			"IsActive":    true,
			"createdAt":   day(45 + i),
			"updatedAt":   day(i),
		})
	}

	for i := range FixtureAccounts {
		s.data[models.EntityAccount] = append(s.data[models.EntityAccount], models.Record{
			"_id":           fmt.Sprintf("account-%02d", i+1),
			"AccountId":     fmt.Sprintf("ACC%03d", i+1),
			"AccountName":   fmt.Sprintf("Settlement %d", i+1),
			"AccountNumber": fmt.Sprintf("5010%08d", i+1),
			"IFSCCode":      fmt.Sprintf("HDFC000%04d", i+1),
			"Description":   "Settlement account",
			"IsActive":      true,
			"createdAt":     day(50 + i),
			"updatedAt":     day(i),
		})
	}

	for i := range FixtureStores {
		s.data[models.EntityStore] = append(s.data[models.EntityStore], models.Record{
			"_id":         fmt.Sprintf("store-%02d", i+1),
			"StoreCode":   fmt.Sprintf("STR%04d", i+1),
			"Name":        fmt.Sprintf("Store %02d", i+1),
			"MerchantId":  fmt.Sprintf("merchant-%02d", i%FixtureMerchants+1),
			"Address":     fmt.Sprintf("%d Residency Road", 100+i),
			"Phone":       fmt.Sprintf("99000%05d", i+1),
			"Email":       fmt.Sprintf("store%d@retail.co.in", i+1),
			"State":       states[i%len(states)],
			"GroupId":     fmt.Sprintf("group-%02d", i%FixtureStoreGroups+1),
			"AffiliateId": fmt.Sprintf("affiliate-%02d", i%FixtureAffiliates+1),
			"AccountId":   fmt.Sprintf("account-%02d", i%FixtureAccounts+1),
			"pinCode":     fmt.Sprintf("5600%02d", i%90+1),
			"IsActive":    i%5 != 4,
			"createdAt":   day(i),
			"updatedAt":   day(i / 2),
		})
	}

	for i := range FixtureLeads {
		leadID := fmt.Sprintf("LEAD%04d", i+1)
		mobile := fmt.Sprintf("91234%05d", i+1)
		applicant := map[string]any{
			"firstName":    names[i%len(names)],
			"lastName":     "Kumar",
			"mobileNumber": mobile,
			"email":        fmt.Sprintf("applicant%d@mail.in", i+1),
			"pan":          fmt.Sprintf("ABCPK%04dQ", i+1),
			"pincode":      fmt.Sprintf("5600%02d", i%90+1),
		}
		lead := models.Record{
			"_id":                fmt.Sprintf("lead-%02d", i+1),
			"leadId":             leadID,
			"mobileNumber":       mobile,
			"loginCountRef":      map[string]any{"count": float64(i%4 + 1)},
			"appliedCustomerRef": map[string]any{"lenderName": lenders[i%len(lenders)]},
			"createdAt":          day(i),
			"updatedAt":          day(i / 3),
		}
		personal := cloneMap(applicant)
		personal["employmentType"] = "Salaried"
		personal["monthlyIncome"] = float64(25000 + 5000*(i%6))
		business := cloneMap(applicant)
		business["businessName"] = fmt.Sprintf("%s Traders", names[i%len(names)])
		business["businessRegistrationType"] = "Proprietorship"
		business["annualTurnover"] = float64(1200000 + 100000*(i%5))

		switch i % 4 {
		case 0, 1:
			lead["personalLoanRef"] = personal
		case 2:
			lead["businessLoanRef"] = business
		default:
			lead["personalLoanRef"] = personal
			lead["businessLoanRef"] = business
		}
		s.data[models.EntityLoan] = append(s.data[models.EntityLoan], lead)

		for j := range i%3 + 1 {
			s.offers[leadID] = append(s.offers[leadID], models.Record{
				"_id":        fmt.Sprintf("offer-%02d-%d", i+1, j+1),
				"leadId":     leadID,
				"lenderName": lenders[(i+j)%len(lenders)],
				"loanAmount": float64(50000 * (j + 1 + i%4)),
				"mpr":        1.2 + 0.15*float64(j),
				"tenure":     float64(12 * (j + 1)),
				"createdAt":  day(i),
			})
		}
	}

	for i := range FixtureCustomers {
		s.data[models.EntityCustomer] = append(s.data[models.EntityCustomer], models.Record{
			"_id":          fmt.Sprintf("customer-%02d", i+1),
			"name":         fmt.Sprintf("%s %c.", names[i%len(names)], 'A'+i%26),
			"mobileNumber": fmt.Sprintf("91234%05d", i+1),
			"email":        fmt.Sprintf("customer%d@mail.in", i+1),
			"pincode":      fmt.Sprintf("5600%02d", i%90+1),
			"createdAt":    day(i * 2),
			"updatedAt":    day(i),
		})
	}

	statuses := []string{"Pending", "Approved", "Completed", "Rejected"}
	for i := range FixtureOrders {
		s.data[models.EntityOrder] = append(s.data[models.EntityOrder], models.Record{
			"_id":          fmt.Sprintf("order-%02d", i+1),
			"orderId":      fmt.Sprintf("ORD%05d", i+1),
			"mobileNumber": fmt.Sprintf("91234%05d", i%FixtureCustomers+1),
			"storeId":      fmt.Sprintf("store-%02d", i%FixtureStores+1),
			"amount":       float64(15000 + 2500*(i%9)),
			"status":       statuses[i%len(statuses)],
			"createdAt":    day(i),
			"updatedAt":    day(i / 2),
		})
	}
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
