// Package apitest runs an in-memory admin API for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"
)

// Default credentials accepted by the fake login endpoint.
const (
	Email    = "admin@example.test"
	Password = "s3cret"
	Token    = "test-token"
	AdminID  = "admin-1"
)

// Request is one request as seen by the server.
type Request struct {
	Method string
	Path   string
	Query  string
	Token  string
	Header http.Header
}

// Upload records a received reel upload.
type Upload struct {
	Fields map[string]string
	Files  map[string]int64 // field -> size in bytes
}

type failure struct {
	status int
	body   string
}

// Server is a fake admin API backed by maps.
type Server struct {
	*httptest.Server

	// OmitLoginAdmin makes login answer 200 with a token but no admin.
	OmitLoginAdmin bool

	mu        sync.Mutex
	seq       int
	users     map[string]map[string]any
	skills    map[string]map[string]any
	subSkills map[string]map[string]any
	reels     map[string]map[string]any
	requests  []Request
	uploads   []Upload
	failNext  *failure
}

// NewServer starts a fake server closed at test cleanup.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		users:     map[string]map[string]any{},
		skills:    map[string]map[string]any{},
		subSkills: map[string]map[string]any{},
		reels:     map[string]map[string]any{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /admin/login", s.login)
	mux.HandleFunc("GET /admin/get/users", s.authed(s.list(&s.users, "users", "totalUsers")))
	mux.HandleFunc("POST /admin/add/user", s.authed(s.create(&s.users, "user", "User added successfully")))
	mux.HandleFunc("PUT /admin/update/user/{id}", s.authed(s.update(&s.users, "user")))
	mux.HandleFunc("DELETE /admin/delete/user/{id}", s.authed(s.remove(&s.users, "User deleted successfully")))
	mux.HandleFunc("GET /admin/get/skills", s.authed(s.list(&s.skills, "skills", "totalSkills")))
	mux.HandleFunc("POST /skill/add", s.authed(s.create(&s.skills, "skill", "Skill added successfully")))
	mux.HandleFunc("PUT /skill/update/{id}", s.authed(s.update(&s.skills, "skill")))
	mux.HandleFunc("DELETE /skill/delete/{id}", s.authed(s.remove(&s.skills, "Skill deleted successfully")))
	mux.HandleFunc("GET /admin/get/subSkills", s.authed(s.listSubSkills))
	mux.HandleFunc("POST /subskill/add", s.authed(s.create(&s.subSkills, "subSkill", "Sub-skill added successfully")))
	mux.HandleFunc("PUT /subskill/update/{id}", s.authed(s.update(&s.subSkills, "subSkill")))
	mux.HandleFunc("DELETE /subskill/delete/{id}", s.authed(s.remove(&s.subSkills, "Sub-skill deleted successfully")))
	mux.HandleFunc("GET /admin/get/reels", s.authed(s.listReels))
	mux.HandleFunc("POST /admin/upload/reel", s.authed(s.uploadReel))
	mux.HandleFunc("DELETE /admin/delete/reel/{id}", s.authed(s.remove(&s.reels, "Reel deleted successfully")))
	mux.HandleFunc("GET /skills-and-subskills", s.authed(s.catalog))

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// Requests returns every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.requests) == 0 {
		return Request{}
	}
	return s.requests[len(s.requests)-1]
}

// Uploads returns the reel uploads received so far.
func (s *Server) Uploads() []Upload {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Upload(nil), s.uploads...)
}

// FailNext makes the next authenticated request answer status with body.
func (s *Server) FailNext(status int, body string) {
	s.mu.Lock()
	s.failNext = &failure{status: status, body: body}
	s.mu.Unlock()
}

// SeedUser adds a user and returns its id.
func (s *Server) SeedUser(fullName, email string) string {
	return s.seed(&s.users, map[string]any{"fullName": fullName, "email": email, "role": "User"})
}

// SeedSkill adds a skill and returns its id.
func (s *Server) SeedSkill(name string) string {
	return s.seed(&s.skills, map[string]any{"skillName": name, "color": "#ffffff"})
}

// SeedSubSkill adds a sub-skill under skillID and returns its id.
func (s *Server) SeedSubSkill(name, skillID string) string {
	return s.seed(&s.subSkills, map[string]any{"subSkillName": name, "skillId": skillID, "color": "#ffffff"})
}

// SeedReel adds a reel and returns its id.
func (s *Server) SeedReel(title, userID, skillID, subSkillID string) string {
	return s.seed(&s.reels, map[string]any{
		"title":       title,
		"user":        userID,
		"skillId":     []any{skillID},
		"subSkillsId": []any{subSkillID},
		"created_at":  time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC).Format(time.RFC3339),
	})
}

// Count returns the number of records of kind users, skills, subSkills or reels.
func (s *Server) Count(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch kind {
	case "users":
		return len(s.users)
	case "skills":
		return len(s.skills)
	case "subSkills":
		return len(s.subSkills)
	case "reels":
		return len(s.reels)
	}
	return 0
}

func (s *Server) seed(coll *map[string]map[string]any, doc map[string]any) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.insertLocked(coll, doc)
}

func (s *Server) insertLocked(coll *map[string]map[string]any, doc map[string]any) string {
	s.seq++
	id := fmt.Sprintf("id%03d", s.seq)
	doc["_id"] = id
	(*coll)[id] = doc
	return id
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Token:  r.Header.Get("token"),
			Header: r.Header.Clone(),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("token") != Token {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "Unauthorized"})
			return
		}
		s.mu.Lock()
		f := s.failNext
		s.failNext = nil
		s.mu.Unlock()
		if f != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = io.WriteString(w, f.body)
			return
		}
		next(w, r)
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"msg": "Invalid body"})
		return
	}
	if body.Email != Email || body.Password != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"msg": "Invalid credentials"})
		return
	}
	resp := map[string]any{"token": Token}
	if !s.OmitLoginAdmin {
		resp["admin"] = map[string]any{"_id": AdminID, "email": Email, "role": "Admin", "fullName": "Test Admin"}
	}
	writeJSON(w, http.StatusOK, resp)
}

func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	return page, limit
}

func sortedDocs(coll map[string]map[string]any) []map[string]any {
	ids := make([]string, 0, len(coll))
	for id := range coll {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyDoc(coll[id]))
	}
	return out
}

func paginate(docs []map[string]any, page, limit int) []map[string]any {
	start := (page - 1) * limit
	if start >= len(docs) {
		return []map[string]any{}
	}
	end := start + limit
	if end > len(docs) {
		end = len(docs)
	}
	return docs[start:end]
}

func copyDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func (s *Server) list(coll *map[string]map[string]any, key, totalKey string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit := pageParams(r)
		s.mu.Lock()
		docs := sortedDocs(*coll)
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]any{key: paginate(docs, page, limit), totalKey: len(docs)})
	}
}

func (s *Server) listSubSkills(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	s.mu.Lock()
	docs := sortedDocs(s.subSkills)
	for _, d := range docs {
		d["skillId"] = s.populate(s.skills, d["skillId"], "skillName")
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"subSkills": paginate(docs, page, limit), "totalSubSkills": len(docs)})
}

func (s *Server) listReels(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	s.mu.Lock()
	docs := sortedDocs(s.reels)
	for _, d := range docs {
		d["user"] = s.populate(s.users, d["user"], "fullName")
		d["skillId"] = s.populateAll(s.skills, d["skillId"], "skillName")
		d["subSkillsId"] = s.populateAll(s.subSkills, d["subSkillsId"], "subSkillName")
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"reels": paginate(docs, page, limit), "totalReels": len(docs)})
}

func (s *Server) populate(coll map[string]map[string]any, ref any, nameKey string) any {
	id, _ := ref.(string)
	doc, ok := coll[id]
	if !ok {
		return ref
	}
	return map[string]any{"_id": id, nameKey: doc[nameKey]}
}

func (s *Server) populateAll(coll map[string]map[string]any, refs any, nameKey string) any {
	list, _ := refs.([]any)
	out := make([]any, 0, len(list))
	for _, ref := range list {
		out = append(out, s.populate(coll, ref, nameKey))
	}
	return out
}

func (s *Server) create(coll *map[string]map[string]any, key, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc map[string]any
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid body"})
			return
		}
		s.mu.Lock()
		s.insertLocked(coll, doc)
		out := copyDoc(doc)
		s.mu.Unlock()
		writeJSON(w, http.StatusCreated, map[string]any{"message": message, key: out})
	}
}

func (s *Server) update(coll *map[string]map[string]any, key string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		var patch map[string]any
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid body"})
			return
		}
		s.mu.Lock()
		doc, ok := (*coll)[id]
		if ok {
			for k, v := range patch {
				doc[k] = v
			}
			doc["_id"] = id
		}
		var out map[string]any
		if ok {
			out = copyDoc(doc)
		}
		s.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": "Updated successfully", key: out})
	}
}

func (s *Server) remove(coll *map[string]map[string]any, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		s.mu.Lock()
		_, ok := (*coll)[id]
		delete(*coll, id)
		s.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"message": message})
	}
}

func (s *Server) uploadReel(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"message": "Invalid form"})
		return
	}
	up := Upload{Fields: map[string]string{}, Files: map[string]int64{}}
	for k, v := range r.MultipartForm.Value {
		if len(v) > 0 {
			up.Fields[k] = v[0]
		}
	}
	for k, fhs := range r.MultipartForm.File {
		if len(fhs) > 0 {
			up.Files[k] = fhs[0].Size
		}
	}

	doc := map[string]any{
		"title":       up.Fields["title"],
		"description": up.Fields["description"],
		"user":        up.Fields["user"],
		"skillId":     []any{up.Fields["skillId"]},
		"subSkillsId": []any{up.Fields["subSkillsId"]},
		"created_at":  time.Now().UTC().Format(time.RFC3339),
	}
	s.mu.Lock()
	s.uploads = append(s.uploads, up)
	s.insertLocked(&s.reels, doc)
	out := copyDoc(doc)
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Reel uploaded successfully", "reel": out})
}

func (s *Server) catalog(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	skills := sortedDocs(s.skills)
	subSkills := sortedDocs(s.subSkills)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"skills": skills, "subSkills": subSkills}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
