package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/domain"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/entities"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/api/handlers"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/api/routes"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/middleware"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/testutil"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/internal/utils"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/analysis"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/content"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/group"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/harvest"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/jwt"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/notification"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/proposal"
	"github.com/ICEI-PUC-Minas-PMV-ADS/pmv-ads-2025-2-e5-proj-empext-t1-pmv-ads-2025-2-e5-cultivodobem-sub000/pkg/user"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testServer struct {
	app *fiber.App
	db  *gorm.DB
	jwt jwt.JWTService
}

func newTestServer(t *testing.T) *testServer {
	utils.InitValidator()
	db := testutil.NewTestDB(t)
	jwtService := jwt.NewJWTServiceWithSecret("handler-test-secret")
	validator := utils.Validate

	userRepository := user.NewUserRepository(db)
	groupRepository := group.NewGroupRepository(db)

	app := fiber.New()
	cfg := routes.Config{
		App:                 app,
		UserHandler:         handlers.NewUserHandler(user.NewUserService(userRepository, jwtService, nil, nil), validator),
		GroupHandler:        handlers.NewGroupHandler(group.NewGroupService(groupRepository, userRepository), validator),
		HarvestHandler:      handlers.NewHarvestHandler(harvest.NewHarvestService(harvest.NewHarvestRepository(db)), validator),
		AnalysisHandler:     handlers.NewAnalysisHandler(analysis.NewAnalysisService(analysis.NewAnalysisRepository(db), nil, nil)),
		ProposalHandler:     handlers.NewProposalHandler(proposal.NewProposalService(proposal.NewProposalRepository(db), groupRepository, userRepository), validator),
		NotificationHandler: handlers.NewNotificationHandler(notification.NewNotificationService(notification.NewNotificationRepository(db)), validator),
		ContentHandler:      handlers.NewContentHandler(content.NewContentService(content.NewContentRepository(db), userRepository, nil), validator),
		Middleware:          middleware.NewMiddleware(),
		JWTService:          jwtService,
	}
	cfg.Setup()

	return &testServer{app: app, db: db, jwt: jwtService}
}

func (s *testServer) token(t *testing.T, u *entities.User) string {
	tok, err := s.jwt.GenerateTokenUser(u.ID.String(), u.Role)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp.StatusCode, env
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	status, env := s.do(t, http.MethodPost, "/api/v1/users/register", "", fiber.Map{
		"name":     "Ana",
		"email":    "Ana@Example.com",
		"password": "segredo123",
		"role":     domain.RoleProducer,
	})
	require.Equal(t, http.StatusCreated, status, env.Error)

	status, env = s.do(t, http.MethodPost, "/api/v1/users/register", "", fiber.Map{
		"name":     "Ana",
		"email":    "ana@example.com",
		"password": "segredo123",
		"role":     domain.RoleProducer,
	})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/users/login", "", fiber.Map{
		"email":    "ana@example.com",
		"password": "errada123",
	})
	assert.Equal(t, http.StatusUnauthorized, status)

	status, env = s.do(t, http.MethodPost, "/api/v1/users/login", "", fiber.Map{
		"email":    "ana@example.com",
		"password": "segredo123",
	})
	require.Equal(t, http.StatusOK, status, env.Error)

	var login domain.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &login))
	assert.NotEmpty(t, login.Token)
	assert.Equal(t, "ana@example.com", login.User.Email)

	status, env = s.do(t, http.MethodGet, "/api/v1/users/me", login.Token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.NotContains(t, string(env.Data), "password")
}

func TestAuthAndRoleGuards(t *testing.T) {
	s := newTestServer(t)
	producer := testutil.CreateUser(t, s.db, "ana", domain.RoleProducer)

	status, _ := s.do(t, http.MethodGet, "/api/v1/groups", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/groups", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = s.do(t, http.MethodPost, "/api/v1/proposals", s.token(t, producer), fiber.Map{
		"price_per_sack": 100,
		"quantity":       1,
		"user_id":        producer.ID.String(),
	})
	assert.Equal(t, http.StatusForbidden, status)
}

func TestGroupJoinThroughAPI(t *testing.T) {
	s := newTestServer(t)
	owner := testutil.CreateUser(t, s.db, "ana", domain.RoleProducer)
	bruno := testutil.CreateUser(t, s.db, "bruno", domain.RoleProducer)

	status, env := s.do(t, http.MethodPost, "/api/v1/groups", s.token(t, owner), fiber.Map{"name": "Cooperativa Sul", "stock": 3})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var created domain.Group
	require.NoError(t, json.Unmarshal(env.Data, &created))

	for i := 0; i < 2; i++ {
		status, env = s.do(t, http.MethodPost, "/api/v1/groups/"+created.ID+"/participants", s.token(t, bruno), fiber.Map{"user_id": bruno.ID.String()})
		require.Equal(t, http.StatusOK, status, env.Error)
	}
	var joined domain.Group
	require.NoError(t, json.Unmarshal(env.Data, &joined))
	assert.Len(t, joined.Participants, 1)

	var notices int64
	require.NoError(t, s.db.Model(&entities.Notification{}).Where("user_id = ?", owner.ID).Count(&notices).Error)
	assert.EqualValues(t, 1, notices)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/groups/"+created.ID, s.token(t, bruno), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = s.do(t, http.MethodPatch, "/api/v1/groups/"+created.ID+"/stock", s.token(t, bruno), fiber.Map{"delta": -5})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodGet, "/api/v1/groups/00000000-0000-0000-0000-000000000000", s.token(t, bruno), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestReceivedProposalsRedactedForMembers(t *testing.T) {
	s := newTestServer(t)
	owner := testutil.CreateUser(t, s.db, "ana", domain.RoleProducer)
	member := testutil.CreateUser(t, s.db, "bruno", domain.RoleProducer)
	buyer := testutil.CreateUser(t, s.db, "carla", domain.RoleRepresentative)
	g := testutil.CreateGroup(t, s.db, "Sul", owner, member)

	status, env := s.do(t, http.MethodPost, "/api/v1/proposals", s.token(t, buyer), fiber.Map{
		"price_per_sack": 250.5,
		"quantity":       10,
		"group_id":       g.ID.String(),
	})
	require.Equal(t, http.StatusCreated, status, env.Error)

	status, env = s.do(t, http.MethodGet, "/api/v1/proposals/received?origin=group", s.token(t, owner), nil)
	require.Equal(t, http.StatusOK, status)
	var ownerView []domain.ReceivedProposal
	require.NoError(t, json.Unmarshal(env.Data, &ownerView))
	require.Len(t, ownerView, 1)
	assert.True(t, ownerView[0].CanSeeContact)
	assert.Equal(t, buyer.Email, ownerView[0].EmailBuyer)

	status, env = s.do(t, http.MethodGet, "/api/v1/proposals/received", s.token(t, member), nil)
	require.Equal(t, http.StatusOK, status)
	var memberView []domain.ReceivedProposal
	require.NoError(t, json.Unmarshal(env.Data, &memberView))
	require.Len(t, memberView, 1)
	assert.False(t, memberView[0].CanSeeContact)
	assert.Empty(t, memberView[0].PhoneBuyer)
	assert.Equal(t, domain.MessageGroupContactNotice, memberView[0].ContactNotice)
	require.NotNil(t, memberView[0].Buyer)
	assert.Empty(t, memberView[0].Buyer.Email)
	assert.Empty(t, memberView[0].Buyer.Phone)
	assert.NotContains(t, string(env.Data), buyer.Email)

	status, env = s.do(t, http.MethodGet, "/api/v1/proposals/received?origin=direct", s.token(t, member), nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, "[]", string(env.Data))

	status, _ = s.do(t, http.MethodGet, "/api/v1/proposals/received?origin=elsewhere", s.token(t, member), nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPatch, "/api/v1/proposals/"+memberView[0].ID+"/viewed", s.token(t, member), nil)
	assert.Equal(t, http.StatusForbidden, status)
	status, _ = s.do(t, http.MethodPatch, "/api/v1/proposals/"+memberView[0].ID+"/viewed", s.token(t, owner), nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestHarvestDeleteOfOthersIsNotFound(t *testing.T) {
	s := newTestServer(t)
	ana := testutil.CreateUser(t, s.db, "ana", domain.RoleProducer)
	bruno := testutil.CreateUser(t, s.db, "bruno", domain.RoleProducer)

	status, env := s.do(t, http.MethodPost, "/api/v1/harvests", s.token(t, ana), fiber.Map{"date": "2025-03-01", "quantity": 12})
	require.Equal(t, http.StatusCreated, status, env.Error)
	var h domain.Harvest
	require.NoError(t, json.Unmarshal(env.Data, &h))

	status, _ = s.do(t, http.MethodDelete, "/api/v1/harvests/"+h.ID, s.token(t, bruno), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(t, http.MethodDelete, "/api/v1/harvests/"+h.ID, s.token(t, ana), nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestCommentValidationAndArticlesUnavailable(t *testing.T) {
	s := newTestServer(t)
	ana := testutil.CreateUser(t, s.db, "ana", domain.RoleProducer)

	status, _ := s.do(t, http.MethodPost, "/api/v1/content/posts/12/comments", s.token(t, ana), fiber.Map{"content": "   "})
	assert.Equal(t, http.StatusBadRequest, status)

	status, env := s.do(t, http.MethodPost, "/api/v1/content/posts/12/comments", s.token(t, ana), fiber.Map{"content": "Ótimo artigo"})
	require.Equal(t, http.StatusCreated, status, env.Error)

	status, env = s.do(t, http.MethodPost, "/api/v1/content/posts/12/like", s.token(t, ana), nil)
	require.Equal(t, http.StatusOK, status)
	var toggled domain.ToggleLikeResponse
	require.NoError(t, json.Unmarshal(env.Data, &toggled))
	assert.Equal(t, domain.LikeTransitionLiked, toggled.Transition)

	status, env = s.do(t, http.MethodGet, "/api/v1/content/articles", s.token(t, ana), nil)
	assert.Equal(t, http.StatusBadGateway, status)
	assert.Equal(t, domain.MessageExternalServiceError, env.Error)
}
