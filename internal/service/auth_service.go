package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/portal-session-service/internal/auth"
	"github.com/spec-kit/portal-session-service/internal/config"
	"github.com/spec-kit/portal-session-service/internal/directory"
	"github.com/spec-kit/portal-session-service/internal/domain"
	"github.com/spec-kit/portal-session-service/internal/events"
	"github.com/spec-kit/portal-session-service/internal/session"
	"github.com/spec-kit/portal-session-service/internal/timeout"
	apperrors "github.com/spec-kit/portal-session-service/pkg/util"
)

// AuthService is the auth gate: it validates portal credentials against
// the static directory and issues or denies sessions. The facility
// portal adds a second factor; the other portals log in directly.
type AuthService struct {
	directory  *directory.Directory
	store      session.Store
	tracker    *timeout.Tracker
	challenges *auth.ChallengeManager
	pending    *auth.PendingTokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// AuthDependencies encapsulates collaborator requirements.
type AuthDependencies struct {
	Directory  *directory.Directory
	Store      session.Store
	Tracker    *timeout.Tracker
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	return &AuthService{
		directory:  deps.Directory,
		store:      deps.Store,
		tracker:    deps.Tracker,
		challenges: auth.NewChallengeManager(),
		pending:    auth.NewPendingTokenManager(cfg.JWTSecret, cfg.PendingTokenTTL()),
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
	}
}

// LoginResult is a freshly issued session.
type LoginResult struct {
	SessionKey string
	User       domain.User
}

// PendingResult is a facility login awaiting its second factor.
type PendingResult struct {
	Token     string
	ExpiresAt time.Time
}

// Login authenticates email and password for the given portal and, on
// success, creates a session. Unknown email, wrong password, and wrong
// portal all return the same invalid-credentials error.
func (s *AuthService) Login(ctx context.Context, email, password string, portal domain.Role) (*LoginResult, error) {
	user, err := s.authenticate(email, password, portal)
	if err != nil {
		return nil, err
	}
	return s.createSession(ctx, *user)
}

// BeginFacilityLogin runs the primary-credential step for the facility
// portal. Success issues an OTP challenge and a pending-login token; no
// session exists until the code verifies.
func (s *AuthService) BeginFacilityLogin(ctx context.Context, email, password string) (*PendingResult, error) {
	user, err := s.authenticate(email, password, domain.RoleFacility)
	if err != nil {
		return nil, err
	}

	challengeID, code, err := s.challenges.Issue(user.Email)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	token, expiresAt, err := s.pending.Generate(challengeID, user.Email)
	if err != nil {
		s.challenges.Abandon(challengeID)
		return nil, apperrors.NewInternalError(err)
	}

	s.publish(ctx, events.Event{
		Type: events.EventOTPIssued,
		Role: domain.RoleFacility,
		Payload: events.OTPIssuedPayload{
			ChallengeID: challengeID,
			Email:       user.Email,
			Code:        code,
		},
	})

	return &PendingResult{Token: token, ExpiresAt: expiresAt}, nil
}

// VerifyOTP completes a facility login. The submitted code must match
// the challenge's current counter; anything else is an invalid-OTP
// failure with no side effect.
func (s *AuthService) VerifyOTP(ctx context.Context, pendingToken, code string) (*LoginResult, error) {
	claims, err := s.pending.Parse(pendingToken)
	if err != nil {
		return nil, apperrors.NewInvalidOTP()
	}

	email, err := s.challenges.Verify(claims.ChallengeID, code)
	if err != nil {
		return nil, apperrors.NewInvalidOTP()
	}

	user, ok := s.directory.Lookup(email)
	if !ok || user.Role != domain.RoleFacility {
		return nil, apperrors.NewInvalidCredentials()
	}

	return s.createSession(ctx, user)
}

// ResendOTP regenerates the code for a pending facility login. The prior
// code stops validating immediately.
func (s *AuthService) ResendOTP(ctx context.Context, pendingToken string) error {
	claims, err := s.pending.Parse(pendingToken)
	if err != nil {
		return apperrors.NewInvalidOTP()
	}

	code, err := s.challenges.Resend(claims.ChallengeID)
	if err != nil {
		return apperrors.NewInvalidOTP()
	}

	s.publish(ctx, events.Event{
		Type: events.EventOTPIssued,
		Role: domain.RoleFacility,
		Payload: events.OTPIssuedPayload{
			ChallengeID: claims.ChallengeID,
			Email:       claims.Email,
			Code:        code,
			Resend:      true,
		},
	})

	return nil
}

// Logout destroys the session and stops tracking its idle clock.
// Destroying an absent session is a no-op success.
func (s *AuthService) Logout(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}

	if err := s.store.Destroy(ctx, key); err != nil {
		return apperrors.NewInternalError(err)
	}
	if s.tracker != nil {
		s.tracker.Drop(key)
	}

	s.publish(ctx, events.Event{
		Type:    events.EventSessionDestroyed,
		Payload: events.SessionDestroyedPayload{SessionKey: key},
	})
	return nil
}

// authenticate resolves the email in the directory and checks the demo
// secret and the portal role. All failure modes return the same error.
func (s *AuthService) authenticate(email, password string, portal domain.Role) (*domain.User, error) {
	user, ok := s.directory.Lookup(email)
	if !ok {
		// burn a comparison anyway so unknown emails cost the same
		s.directory.CheckPassword(password)
		return nil, apperrors.NewInvalidCredentials()
	}
	if !s.directory.CheckPassword(password) {
		return nil, apperrors.NewInvalidCredentials()
	}
	if user.Role != portal {
		return nil, apperrors.NewInvalidCredentials()
	}
	return &user, nil
}

func (s *AuthService) createSession(ctx context.Context, user domain.User) (*LoginResult, error) {
	key := session.NewKey()
	if err := s.store.Create(ctx, key, user); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if s.tracker != nil {
		s.tracker.Register(key, user.Role)
	}

	s.logger.Info("session created",
		zap.String("user_id", user.ID),
		zap.String("role", string(user.Role)))

	s.publish(ctx, events.Event{
		Type: events.EventSessionCreated,
		Role: user.Role,
		Payload: events.SessionCreatedPayload{
			SessionKey: key,
			UserID:     user.ID,
			Email:      user.Email,
		},
	})

	return &LoginResult{SessionKey: key, User: user}, nil
}

func (s *AuthService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
