package v1

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cfstudy/checklist-backend/internal/config"
	"github.com/cfstudy/checklist-backend/pkg/db"
	"github.com/cfstudy/checklist-backend/pkg/enrollment"
	"github.com/cfstudy/checklist-backend/pkg/jwt"
	"github.com/cfstudy/checklist-backend/pkg/progress"
	"github.com/cfstudy/checklist-backend/pkg/runner"
	"github.com/cfstudy/checklist-backend/pkg/types"
)

const testAPIKey = "test-api-key"
const testAdminPassword = "correct horse battery staple"

// memStore is an in-memory ParticipantStore for handler tests.
type memStore struct {
	participants map[string]types.Participant
	pingErr      error
}

func newMemStore() *memStore {
	return &memStore{participants: map[string]types.Participant{}}
}

func (s *memStore) add(p types.Participant) {
	if p.Session1Steps == nil {
		p.Session1Steps = map[string]types.StepRecord{}
	}
	if p.Session2Steps == nil {
		p.Session2Steps = map[string]types.StepRecord{}
	}
	s.participants[p.Code] = p
}

func (s *memStore) FindParticipantByCode(code string) (types.Participant, error) {
	p, ok := s.participants[code]
	if !ok {
		return types.Participant{}, types.ErrNotFound
	}
	return p, nil
}

func (s *memStore) FindAllParticipants() ([]types.Participant, error) {
	codes := make([]string, 0, len(s.participants))
	for code := range s.participants {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	all := make([]types.Participant, 0, len(codes))
	for _, code := range codes {
		all = append(all, s.participants[code])
	}
	return all, nil
}

func (s *memStore) CreateParticipant(req types.ParticipantCreate) (types.Participant, error) {
	if err := enrollment.ValidateRegistration(req); err != nil {
		return types.Participant{}, err
	}
	group := req.Group
	if group == "" {
		all, _ := s.FindAllParticipants()
		group = enrollment.BalancedGroup(all)
	}
	codes := make([]string, 0, len(s.participants))
	for code := range s.participants {
		codes = append(codes, code)
	}
	p := types.Participant{
		Code:          enrollment.NextCode(codes),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Phone:         req.Phone,
		Group:         group,
		RAInitials:    req.RAInitials,
		Status:        types.STATUS_NEW,
		RegisteredAt:  time.Now().Unix(),
		Session1Steps: map[string]types.StepRecord{},
		Session2Steps: map[string]types.StepRecord{},
	}
	s.participants[p.Code] = p
	return p, nil
}

func (s *memStore) MarkStep(code string, session int, stepID string, note string, completedAt int64) (types.Participant, error) {
	p, err := s.FindParticipantByCode(code)
	if err != nil {
		return p, err
	}
	if err := progress.MarkStep(&p, session, stepID, note, completedAt); err != nil {
		return p, err
	}
	s.participants[code] = p
	return p, nil
}

func (s *memStore) UnmarkStep(code string, session int, stepID string) (types.Participant, error) {
	p, err := s.FindParticipantByCode(code)
	if err != nil {
		return p, err
	}
	if err := progress.UnmarkStep(&p, session, stepID); err != nil {
		return p, err
	}
	s.participants[code] = p
	return p, nil
}

func (s *memStore) UpdateParticipant(code string, patch types.ParticipantUpdate) (types.Participant, error) {
	p, err := s.FindParticipantByCode(code)
	if err != nil {
		return p, err
	}
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setStr(&p.FirstName, patch.FirstName)
	setStr(&p.LastName, patch.LastName)
	setStr(&p.Email, patch.Email)
	setStr(&p.Phone, patch.Phone)
	setStr(&p.Group, patch.Group)
	setStr(&p.RAInitials, patch.RAInitials)
	setStr(&p.Notes, patch.Notes)
	setStr(&p.Session1.Date, patch.Session1Date)
	setStr(&p.Session1.Time, patch.Session1Time)
	setStr(&p.Session1.HRVDeviceID, patch.Session1HRVRef)
	setStr(&p.Session2.Date, patch.Session2Date)
	setStr(&p.Session2.Time, patch.Session2Time)
	setStr(&p.Session2.HRVDeviceID, patch.Session2HRVRef)
	if p.Status == types.STATUS_NEW && p.Session1.Date != "" {
		p.Status = types.STATUS_SCHEDULED
	}
	s.participants[code] = p
	return p, nil
}

func (s *memStore) ForceStatus(code string, status string) (types.Participant, error) {
	known := false
	for _, candidate := range types.Statuses {
		if candidate == status {
			known = true
			break
		}
	}
	if !known {
		return types.Participant{}, types.ErrValidation
	}
	p, err := s.FindParticipantByCode(code)
	if err != nil {
		return p, err
	}
	p.Status = status
	s.participants[code] = p
	return p, nil
}

func (s *memStore) ImportParticipants(participants []types.Participant) (int, error) {
	imported := 0
	for _, p := range participants {
		if p.Code == "" {
			continue
		}
		s.add(p)
		imported++
	}
	return imported, nil
}

func (s *memStore) Ping(ctx context.Context) error { return s.pingErr }
func (s *memStore) BackendName() string            { return "memory" }

var _ db.ParticipantStore = (*memStore)(nil)

func newTestServer(store db.ParticipantStore) (*gin.Engine, *runner.Runner) {
	gin.SetMode(gin.TestMode)

	syncRunner := runner.NewRunner(store, 3600)
	h := NewHTTPHandler(store, syncRunner, []string{testAPIKey}, testAdminPassword)

	router := gin.New()
	root := router.Group("/v1")
	h.AddAuthAPI(root)
	h.AddParticipantPortalAPI(root)
	h.AddCollectorAPI(root)
	h.AddAdminAPI(root)
	h.AddReportsAPI(root)
	h.AddSyncStatusAPI(root)
	return router, syncRunner
}

func performRequest(router http.Handler, method string, path string, body io.Reader, headers map[string]string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, body)
	req.Header.Set("Api-Key", testAPIKey)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func jsonBody(t *testing.T, payload interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(data)
}

func decodeParticipantView(t *testing.T, w *httptest.ResponseRecorder) ParticipantView {
	t.Helper()
	var view ParticipantView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode response: %v\n%s", err, w.Body.String())
	}
	return view
}

// setTestJWTKey installs a throwaway signing key and returns a valid admin
// bearer token.
func setTestJWTKey(t *testing.T) string {
	t.Helper()
	key := base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
	t.Setenv(config.ENV_JWT_TOKEN_KEY, key)

	token, err := jwt.GenerateNewToken("test-admin", time.Minute, []string{jwt.ROLE_ADMIN})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return token
}

func seedParticipant(store *memStore, code string, group string) types.Participant {
	p := types.Participant{
		Code:          code,
		FirstName:     "Jane",
		LastName:      "Smith",
		Email:         "jane@example.edu",
		Group:         group,
		Status:        types.STATUS_NEW,
		RegisteredAt:  1700000000,
		Session1Steps: map[string]types.StepRecord{},
		Session2Steps: map[string]types.StepRecord{},
	}
	store.add(p)
	return p
}
