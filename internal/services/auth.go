package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yungbote/educator-assistant-backend/internal/data/repos"
	types "github.com/yungbote/educator-assistant-backend/internal/domain"
	"github.com/yungbote/educator-assistant-backend/internal/platform/apierr"
	"github.com/yungbote/educator-assistant-backend/internal/platform/ctxutil"
	"github.com/yungbote/educator-assistant-backend/internal/platform/logger"
	"github.com/yungbote/educator-assistant-backend/internal/platform/validate"
)

type JWTClaims struct {
	School string `json:"school,omitempty"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name"`
	School    string `json:"school"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*types.Educator, error)
	Login(ctx context.Context, email, password string) (string, *types.Educator, error)
	ParseToken(tokenString string) (*JWTClaims, error)
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
	DemoContext(ctx context.Context) (context.Context, error)
	Me(ctx context.Context) (*types.Educator, error)
	AccessTTL() time.Duration
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	educatorRepo repos.EducatorRepo
	jwtSecretKey string
	accessTTL    time.Duration
	demoEmail    string
}

func NewAuthService(
	db *gorm.DB,
	log *logger.Logger,
	educatorRepo repos.EducatorRepo,
	jwtSecretKey string,
	accessTTL time.Duration,
	demoEmail string,
) AuthService {
	if accessTTL <= 0 {
		accessTTL = 24 * time.Hour
	}
	return &authService{
		db:           db,
		log:          log.With("service", "AuthService"),
		educatorRepo: educatorRepo,
		jwtSecretKey: jwtSecretKey,
		accessTTL:    accessTTL,
		demoEmail:    strings.ToLower(strings.TrimSpace(demoEmail)),
	}
}

func (as *authService) AccessTTL() time.Duration { return as.accessTTL }

func (as *authService) Register(ctx context.Context, in RegisterInput) (*types.Educator, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	exists, err := as.educatorRepo.EmailExists(ctx, nil, in.Email)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("check email: %w", err))
	}
	if exists {
		return nil, apierr.Conflict("email_taken", errors.New("an account with that email already exists"))
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("hash password: %w", err))
	}
	ed, err := as.educatorRepo.Create(ctx, nil, &types.Educator{
		Email:     in.Email,
		Password:  string(hash),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		School:    strings.TrimSpace(in.School),
	})
	if err != nil {
		return nil, apierr.Internal(fmt.Errorf("create educator: %w", err))
	}
	as.log.Info("educator registered", "educator_id", ed.ID)
	return ed, nil
}

func (as *authService) Login(ctx context.Context, email, password string) (string, *types.Educator, error) {
	ed, err := as.educatorRepo.GetByEmail(ctx, nil, email)
	if err != nil {
		return "", nil, apierr.Internal(fmt.Errorf("load educator: %w", err))
	}
	if ed == nil {
		return "", nil, apierr.Unauthorized(errors.New("invalid email or password"))
	}
	if err := bcrypt.CompareHashAndPassword([]byte(ed.Password), []byte(password)); err != nil {
		return "", nil, apierr.Unauthorized(errors.New("invalid email or password"))
	}
	tok, err := as.generateAccessToken(ed)
	if err != nil {
		return "", nil, apierr.Internal(fmt.Errorf("sign token: %w", err))
	}
	return tok, ed, nil
}

func (as *authService) generateAccessToken(ed *types.Educator) (string, error) {
	now := time.Now()
	claims := JWTClaims{
		School: ed.School,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ed.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(as.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) ParseToken(tokenString string) (*JWTClaims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(as.jwtSecretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, apierr.Unauthorized(fmt.Errorf("invalid token: %w", err))
	}
	claims, ok := parsed.Claims.(*JWTClaims)
	if !ok || !parsed.Valid {
		return nil, apierr.Unauthorized(errors.New("invalid or expired token"))
	}
	return claims, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	claims, err := as.ParseToken(tokenString)
	if err != nil {
		return ctx, err
	}
	educatorID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, apierr.Unauthorized(fmt.Errorf("invalid subject in token: %w", err))
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		EducatorID:  educatorID,
		School:      claims.School,
		TokenString: tokenString,
	}), nil
}

// DemoContext attaches the demo educator, creating it on first use.
func (as *authService) DemoContext(ctx context.Context) (context.Context, error) {
	if as.demoEmail == "" {
		return ctx, apierr.Unauthorized(errors.New("demo account not configured"))
	}
	ed, err := as.educatorRepo.GetByEmail(ctx, nil, as.demoEmail)
	if err != nil {
		return ctx, apierr.Internal(fmt.Errorf("load demo educator: %w", err))
	}
	if ed == nil {
		hash, hErr := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.MinCost)
		if hErr != nil {
			return ctx, apierr.Internal(hErr)
		}
		ed, err = as.educatorRepo.Create(ctx, nil, &types.Educator{
			Email:     as.demoEmail,
			Password:  string(hash),
			FirstName: "Demo",
			LastName:  "Educator",
			School:    "demo",
		})
		if err != nil {
			return ctx, apierr.Internal(fmt.Errorf("create demo educator: %w", err))
		}
		as.log.Info("demo educator created", "educator_id", ed.ID)
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		EducatorID: ed.ID,
		School:     ed.School,
		Demo:       true,
	}), nil
}

func (as *authService) Me(ctx context.Context) (*types.Educator, error) {
	id, err := educatorFrom(ctx)
	if err != nil {
		return nil, err
	}
	ed, err := as.educatorRepo.GetByID(ctx, nil, id)
	if err != nil {
		return nil, apierr.Internal(err)
	}
	if ed == nil {
		return nil, apierr.NotFound("educator")
	}
	return ed, nil
}
