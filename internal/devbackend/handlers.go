package devbackend

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kodstechnologies/lm-backoffice/internal/models"
)

// ============================================================================
// Authentication
// ============================================================================

func (s *Server) handleEmailVerify(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.admins {
		if strings.EqualFold(a.Email, strings.TrimSpace(body.Email)) {
			s.issued[a.Phone] = DevOTP
			writeJSON(w, http.StatusOK, map[string]any{
				"success":     true,
				"message":     "OTP sent to registered mobile number",
				"phoneNumber": a.Phone,
				"phoneHint":   maskPhone(a.Phone),
				"email":       a.Email,
			})
			return
		}
	}
	writeError(w, http.StatusNotFound, "email is not registered")
}

func (s *Server) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PhoneNumber string `json:"phoneNumber"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.isAdminPhone(body.PhoneNumber) {
		writeError(w, http.StatusNotFound, "phone number is not registered")
		return
	}
	s.issued[body.PhoneNumber] = DevOTP
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "OTP resent"})
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		PhoneNumber string `json:"phoneNumber"`
		OTP         string `json:"otp"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	s.mu.Lock()
	expected, ok := s.issued[body.PhoneNumber]
	if ok && expected == body.OTP {
		delete(s.issued, body.PhoneNumber)
	}
	s.mu.Unlock()

	if !ok || expected != body.OTP {
		writeError(w, http.StatusUnauthorized, "invalid OTP")
		return
	}
	token, err := s.IssueToken(body.PhoneNumber)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "OTP verified", "token": token})
}

func (s *Server) isAdminPhone(phone string) bool {
	for _, a := range s.admins {
		if a.Phone == phone {
			return true
		}
	}
	return false
}

func maskPhone(phone string) string {
	if len(phone) <= 4 {
		return phone
	}
	return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}

// ============================================================================
// Loans
// ============================================================================

func (s *Server) handleAllDetails(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(r.URL.Query().Get("search"))

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Record
	for _, lead := range s.data[models.EntityLoan] {
		if search != "" && !strings.Contains(strings.ToLower(lead.Text("leadId")), search) &&
			!strings.Contains(lead.Text("mobileNumber"), search) {
			continue
		}
		out = append(out, lead)
	}
	writeList(w, out)
}

func (s *Server) handleOffers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeList(w, s.offers[chi.URLParam(r, "leadId")])
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	offers := s.offers[chi.URLParam(r, "leadId")]
	s.mu.Unlock()

	summary := map[string]any{"offersTotal": len(offers)}
	if len(offers) > 0 {
		maxAmount, _ := offers[0].Number("loanAmount")
		minMPR, _ := offers[0].Number("mpr")
		maxMPR := minMPR
		for _, o := range offers[1:] {
			amount, _ := o.Number("loanAmount")
			mpr, _ := o.Number("mpr")
			maxAmount = max(maxAmount, amount)
			minMPR = min(minMPR, mpr)
			maxMPR = max(maxMPR, mpr)
		}
		summary["maxLoanAmount"] = maxAmount
		summary["minMPR"] = minMPR
		summary["maxMPR"] = maxMPR
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": summary})
}

// handleFilteredData returns raw loan rows (personalLoan / businessLoan
// payloads) whose date falls within the from/to calendar days
func (s *Server) handleFilteredData(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, errFrom := time.ParseInLocation("2006-01-02", q.Get("from"), time.Local)
	to, errTo := time.ParseInLocation("2006-01-02", q.Get("to"), time.Local)
	if errFrom != nil || errTo != nil {
		writeError(w, http.StatusBadRequest, "from and to must be YYYY-MM-DD")
		return
	}
	to = to.AddDate(0, 0, 1)

	field := "createdAt"
	switch q.Get("type") {
	case "", "created":
	case "updated":
		field = "updatedAt"
	default:
		writeError(w, http.StatusBadRequest, "type must be created or updated")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Record
	for _, lead := range s.data[models.EntityLoan] {
		ts, ok := lead.Time(field)
		if !ok || ts.Before(from) || !ts.Before(to) {
			continue
		}
		out = append(out, rawLoanRows(lead)...)
	}
	writeList(w, out)
}

func (s *Server) handleLoansByType(w http.ResponseWriter, r *http.Request) {
	loanType := r.URL.Query().Get("loanType")
	key := map[string]string{"personal": "personalLoan", "business": "businessLoan"}[loanType]
	if key == "" {
		writeError(w, http.StatusBadRequest, "loanType must be personal or business")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Record
	for _, lead := range s.data[models.EntityLoan] {
		for _, row := range rawLoanRows(lead) {
			if _, ok := row[key]; ok {
				out = append(out, row)
			}
		}
	}
	writeList(w, out)
}

// rawLoanRows renders a lead as one row per loan payload
func rawLoanRows(lead models.Record) []models.Record {
	var rows []models.Record
	for _, v := range []struct{ ref, key string }{
		{"personalLoanRef", "personalLoan"},
		{"businessLoanRef", "businessLoan"},
	} {
		payload, ok := lead.Map(v.ref)
		if !ok {
			continue
		}
		rows = append(rows, models.Record{
			"_id":          lead.Text("_id") + "-" + strings.TrimSuffix(v.key, "Loan"),
			"leadId":       lead["leadId"],
			"mobileNumber": lead["mobileNumber"],
			v.key:          map[string]any(payload),
			"createdAt":    lead["createdAt"],
			"updatedAt":    lead["updatedAt"],
		})
	}
	return rows
}

// ============================================================================
// Generic entity handlers
// ============================================================================

func (s *Server) listHandler(e models.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		writeList(w, s.data[e])
	}
}

func (s *Server) getHandler(e models.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		rec, _ := s.find(e, chi.URLParam(r, "id"))
		if rec == nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("%s not found", e))
			return
		}
		writeRecord(w, http.StatusOK, rec)
	}
}

func (s *Server) createHandler(e models.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body models.Record
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := requireFields(body, models.SchemaFor(e)); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": err.Error(), "field": err.field})
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		rec := s.insert(e, body)
		writeRecord(w, http.StatusCreated, rec)
	}
}

func (s *Server) updateHandler(e models.Entity) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body models.Record
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		rec, ok := s.patch(e, chi.URLParam(r, "id"), body)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("%s not found", e))
			return
		}
		writeRecord(w, http.StatusOK, rec)
	}
}

type fieldError struct {
	field string
}

func (e *fieldError) Error() string { return e.field + " is required" }

func requireFields(body models.Record, schema models.Schema) *fieldError {
	for _, f := range schema.Required {
		if body.Text(f.Name) == "" {
			return &fieldError{field: f.Name}
		}
	}
	return nil
}

// find returns the record with the given _id and its index. Callers hold s.mu.
func (s *Server) find(e models.Entity, id string) (models.Record, int) {
	for i, rec := range s.data[e] {
		if rec.Text("_id") == id {
			return rec, i
		}
	}
	return nil, -1
}

// insert stamps identity and timestamps. Callers hold s.mu.
func (s *Server) insert(e models.Entity, body models.Record) models.Record {
	now := s.now().UTC().Format(time.RFC3339)
	rec := body.Clone()
	rec["_id"] = uuid.NewString()
	rec["createdAt"] = now
	rec["updatedAt"] = now
	s.data[e] = append(s.data[e], rec)
	return rec
}

// patch merges body into a record. Callers hold s.mu.
func (s *Server) patch(e models.Entity, id string, body models.Record) (models.Record, bool) {
	rec, i := s.find(e, id)
	if rec == nil {
		return nil, false
	}
	updated := rec.Clone()
	for k, v := range body {
		if k == "_id" || k == "createdAt" {
			continue
		}
		updated[k] = v
	}
	updated["updatedAt"] = s.now().UTC().Format(time.RFC3339)
	s.data[e][i] = updated
	return updated, true
}

// ============================================================================
// Stores
// ============================================================================

func (s *Server) handleStoresByMerchant(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Record
	for _, rec := range s.data[models.EntityStore] {
		if rec.Text("MerchantId") == id {
			out = append(out, rec)
		}
	}
	writeList(w, out)
}

func (s *Server) handleCreateStore(w http.ResponseWriter, r *http.Request) {
	merchantID := chi.URLParam(r, "id")
	body, err := formRecord(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if body.Text("Name") == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "message": "Name is required", "field": "Name"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if m, _ := s.find(models.EntityMerchant, merchantID); m == nil {
		writeError(w, http.StatusNotFound, "merchant not found")
		return
	}
	body["MerchantId"] = merchantID
	body["StoreCode"] = fmt.Sprintf("STR%04d", len(s.data[models.EntityStore])+1)
	writeRecord(w, http.StatusCreated, s.insert(models.EntityStore, body))
}

func (s *Server) handleUpdateStore(w http.ResponseWriter, r *http.Request) {
	body, err := formRecord(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.patch(models.EntityStore, chi.URLParam(r, "id"), body)
	if !ok {
		writeError(w, http.StatusNotFound, "store not found")
		return
	}
	writeRecord(w, http.StatusOK, rec)
}

// handleUploadStores creates one store per CSV row. The header row names
// the store fields.
func (s *Server) handleUploadStores(w http.ResponseWriter, r *http.Request) {
	merchantID := chi.URLParam(r, "merchantId")
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil || len(rows) < 2 {
		writeError(w, http.StatusBadRequest, "file must be a CSV with a header row and at least one store")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if m, _ := s.find(models.EntityMerchant, merchantID); m == nil {
		writeError(w, http.StatusNotFound, "merchant not found")
		return
	}

	header := rows[0]
	var skipped int
	var created []string
	for _, row := range rows[1:] {
		rec := models.Record{"MerchantId": merchantID}
		for i, col := range header {
			if i < len(row) && strings.TrimSpace(row[i]) != "" {
				rec[strings.TrimSpace(col)] = strings.TrimSpace(row[i])
			}
		}
		if rec.Text("Name") == "" {
			skipped++
			continue
		}
		created = append(created, s.insert(models.EntityStore, rec).Text("_id"))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  fmt.Sprintf("%d stores uploaded", len(created)),
		"inserted": len(created),
		"skipped":  skipped,
		"ids":      created,
	})
}

// formRecord reads a multipart store form. Files are recorded by name.
func formRecord(r *http.Request) (models.Record, error) {
	if err := r.ParseMultipartForm(10 << 20); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("invalid form: %w", err)
	}
	rec := models.Record{}
	if r.MultipartForm == nil {
		return rec, nil
	}
	for k, v := range r.MultipartForm.Value {
		if len(v) == 0 {
			continue
		}
		switch v[0] {
		case "true":
			rec[k] = true
		case "false":
			rec[k] = false
		default:
			rec[k] = v[0]
		}
	}
	for k, files := range r.MultipartForm.File {
		if len(files) == 0 {
			continue
		}
		f, err := files[0].Open()
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", k, err)
		}
		n, _ := io.Copy(io.Discard, f)
		f.Close()
		rec[k] = map[string]any{"fileName": files[0].Filename, "size": float64(n)}
	}
	return rec, nil
}

// ============================================================================
// Orders and customers
// ============================================================================

func (s *Server) handleSearchOrders(w http.ResponseWriter, r *http.Request) {
	number := r.URL.Query().Get("number")
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Record
	for _, rec := range s.data[models.EntityOrder] {
		if number != "" && strings.Contains(rec.Text("mobileNumber"), number) {
			out = append(out, rec)
		}
	}
	writeList(w, out)
}

func (s *Server) handleUpdateOrder(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.patch(models.EntityOrder, chi.URLParam(r, "id"), models.Record{"status": body.Status})
	if !ok {
		writeError(w, http.StatusNotFound, "order not found")
		return
	}
	writeRecord(w, http.StatusOK, rec)
}

// handleCustomers answers with the {"customers": [...]} shape
func (s *Server) handleCustomers(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	customers := s.data[models.EntityCustomer]
	if customers == nil {
		customers = []models.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "customers": customers})
}

func (s *Server) handleSearchCustomers(w http.ResponseWriter, r *http.Request) {
	mobile := r.URL.Query().Get("mobileNumber")
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Record
	for _, rec := range s.data[models.EntityCustomer] {
		if mobile != "" && strings.Contains(rec.Text("mobileNumber"), mobile) {
			out = append(out, rec)
		}
	}
	writeList(w, out)
}
