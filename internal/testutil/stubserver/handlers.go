package stubserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

const maxUploadSize = 32 << 20

type userResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

type fileResponse struct {
	ID        int64  `json:"id"`
	Filename  string `json:"filename"`
	FileSize  int64  `json:"file_size"`
	CreatedAt string `json:"created_at"`
	OwnerID   int64  `json:"owner_id"`
}

const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

func toUserResponse(u *user) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, IsActive: u.IsActive, CreatedAt: u.CreatedAt.UTC().Format(timeLayout)}
}

func toFileResponse(f *storedFile) fileResponse {
	return fileResponse{ID: f.ID, Filename: f.Filename, FileSize: f.Size, CreatedAt: f.CreatedAt.UTC().Format(timeLayout), OwnerID: f.OwnerID}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeUnauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeDetail(w, http.StatusUnauthorized, detail)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Welcome to Cloud Drive API"})
}

type createUserRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// validationDetail lists the failed fields, e.g. "invalid fields: email (email)".
func validationDetail(ve validator.ValidationErrors) string {
	fields := make([]string, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, strings.ToLower(fe.Field())+" ("+fe.Tag()+")")
	}
	return "invalid fields: " + strings.Join(fields, ", ")
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if err := s.validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			writeDetail(w, http.StatusUnprocessableEntity, validationDetail(ve))
			return
		}
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "could not hash password")
		return
	}

	s.mu.Lock()
	if _, exists := s.users[req.Email]; exists {
		s.mu.Unlock()
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	s.nextUserID++
	u := &user{ID: s.nextUserID, Email: req.Email, Hash: hash, IsActive: true, CreatedAt: s.now()}
	s.users[req.Email] = u
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form")
		return
	}

	u, err := s.authenticate(r.PostForm.Get("username"), r.PostForm.Get("password"))
	if err != nil {
		writeUnauthorized(w, "Incorrect username or password")
		return
	}

	if s.omitToken {
		writeJSON(w, http.StatusOK, map[string]string{"token_type": "bearer"})
		return
	}

	token, err := s.IssueToken(u.Email, s.tokenTTL)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"access_token": token, "token_type": "bearer"})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r.Context())
	if err != nil {
		writeUnauthorized(w, "Not authenticated")
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (s *Server) handleListFiles(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r.Context())
	if err != nil {
		writeUnauthorized(w, "Not authenticated")
		return
	}

	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "skip must be an integer")
		return
	}
	limit, err := queryInt(r, "limit", 100)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "limit must be an integer")
		return
	}

	s.mu.Lock()
	owned := s.filesOf(u.ID)
	s.mu.Unlock()

	out := make([]fileResponse, 0, len(owned))
	for i, f := range owned {
		if i < skip {
			continue
		}
		if len(out) >= limit {
			break
		}
		out = append(out, toFileResponse(f))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	u, err := currentUser(r.Context())
	if err != nil {
		writeUnauthorized(w, "Not authenticated")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "multipart body required")
		return
	}
	part, header, err := r.FormFile("file")
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "field 'file' required")
		return
	}
	defer part.Close()

	data, err := io.ReadAll(part)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "could not read upload")
		return
	}

	s.mu.Lock()
	s.nextFileID++
	f := &storedFile{
		ID:        s.nextFileID,
		Filename:  header.Filename,
		Size:      int64(len(data)),
		CreatedAt: s.now(),
		OwnerID:   u.ID,
		Data:      data,
	}
	s.files[f.ID] = f
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, toFileResponse(f))
}

func (s *Server) ownedFile(r *http.Request) (*storedFile, bool) {
	u, err := currentUser(r.Context())
	if err != nil {
		return nil, false
	}
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[id]
	if !ok || f.OwnerID != u.ID {
		return nil, false
	}
	return f, true
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	f, ok := s.ownedFile(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", `attachment; filename="`+f.Filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(f.Data)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	f, ok := s.ownedFile(r)
	if !ok {
		writeDetail(w, http.StatusNotFound, "File not found")
		return
	}

	s.mu.Lock()
	delete(s.files, f.ID)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return n, nil
}
