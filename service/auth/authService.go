package authsvc

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/PawelKwidzinski/console-and-games-rental/model"
	"github.com/PawelKwidzinski/console-and-games-rental/util/hash"
	jwtutil "github.com/PawelKwidzinski/console-and-games-rental/util/jwt"
	"github.com/PawelKwidzinski/console-and-games-rental/util/mailer"
)

var (
	ErrEmailTaken      = errors.New("email already registered")
	ErrBadInput        = errors.New("bad input")
	ErrInvalidCreds    = errors.New("invalid credentials")
	ErrAccountDisabled = errors.New("account not activated")
	ErrTokenInvalid    = errors.New("invalid activation token")
	ErrTokenExpired    = errors.New("activation token expired, a new one has been sent")
)

const (
	activationCodeLen = 6
	activationTTL     = 15 * time.Minute
	tokenTTLHours     = 24
)

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	Enable(ctx context.Context, id int64) error
	InsertActivationToken(ctx context.Context, t *model.ActivationToken) error
	FindActivationToken(ctx context.Context, token string) (*model.ActivationToken, error)
	MarkTokenValidated(ctx context.Context, tokenID int64, at time.Time) error
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, error)
	Activate(ctx context.Context, code string) error
	Login(ctx context.Context, req model.LoginReq) (string, error)
}

type service struct {
	r             Repo
	mail          mailer.Mailer
	log           *slog.Logger
	secret        string
	activationURL string
}

func New(r Repo, mail mailer.Mailer, log *slog.Logger, secret, activationURL string) Service {
	return &service{r: r, mail: mail, log: log, secret: secret, activationURL: activationURL}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || len(req.Password) < 8 {
		return nil, ErrBadInput
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        email,
		PasswordHash: hashed,
	}
	if err := s.r.Create(ctx, u); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if err := s.sendActivation(ctx, u); err != nil {
		// the account exists, activation can be re-requested later
		s.log.Warn("activation mail failed", "user_id", u.ID, "err", err)
	}
	return u, nil
}

func (s *service) sendActivation(ctx context.Context, u *model.User) error {
	code, err := generateActivationCode(activationCodeLen)
	if err != nil {
		return err
	}
	t := &model.ActivationToken{
		UserID:    u.ID,
		Token:     code,
		ExpiresAt: time.Now().Add(activationTTL),
	}
	if err := s.r.InsertActivationToken(ctx, t); err != nil {
		return err
	}
	fullName := strings.TrimSpace(u.FirstName + " " + u.LastName)
	return s.mail.SendActivation(u.Email, fullName, s.activationURL, code)
}

func (s *service) Activate(ctx context.Context, code string) error {
	t, err := s.r.FindActivationToken(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTokenInvalid
		}
		return err
	}
	if t.ValidatedAt != nil {
		return ErrTokenInvalid
	}
	if time.Now().After(t.ExpiresAt) {
		if u, err := s.r.ByID(ctx, t.UserID); err == nil {
			if err := s.sendActivation(ctx, u); err != nil {
				s.log.Warn("re-sending activation failed", "user_id", t.UserID, "err", err)
			}
		}
		return ErrTokenExpired
	}

	if err := s.r.Enable(ctx, t.UserID); err != nil {
		return err
	}
	return s.r.MarkTokenValidated(ctx, t.ID, time.Now())
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (string, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return "", ErrBadInput
	}

	u, err := s.r.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrInvalidCreds
		}
		return "", err
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return "", ErrInvalidCreds
	}
	if !u.Enabled {
		return "", ErrAccountDisabled
	}
	return jwtutil.Issue(s.secret, u.ID, tokenTTLHours)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

func generateActivationCode(length int) (string, error) {
	const digits = "0123456789"
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
		if err != nil {
			return "", err
		}
		b.WriteByte(digits[n.Int64()])
	}
	return b.String(), nil
}
