package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/Gestion-api/internal/application/confirmation"
	"github.com/jhoicas/Gestion-api/internal/application/dto"
	"github.com/jhoicas/Gestion-api/internal/application/ports"
	"github.com/jhoicas/Gestion-api/internal/domain"
	"github.com/jhoicas/Gestion-api/internal/domain/entity"
	"github.com/jhoicas/Gestion-api/internal/domain/repository"
	"github.com/jhoicas/Gestion-api/internal/domain/tenancy"
	"github.com/jhoicas/Gestion-api/pkg/jwt"
)

// MinPasswordLength longitud mínima de contraseña.
const MinPasswordLength = 8

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase casos de uso de autenticación: alta de tenant, login, verificación de email
// y restablecimiento de contraseña.
type AuthUseCase struct {
	repos  repository.Tx
	tx     repository.TxRunner
	gate   *confirmation.Gate
	mail   ports.EmailEnqueuer
	jwtCfg JWTConfig
	log    zerolog.Logger
	now    func() time.Time
}

// NewAuthUseCase construye el caso de uso de auth. mail puede ser nil.
func NewAuthUseCase(repos repository.Tx, tx repository.TxRunner, gate *confirmation.Gate, mail ports.EmailEnqueuer, jwtCfg JWTConfig, log zerolog.Logger) *AuthUseCase {
	return &AuthUseCase{repos: repos, tx: tx, gate: gate, mail: mail, jwtCfg: jwtCfg, log: log, now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (uc *AuthUseCase) WithClock(now func() time.Time) *AuthUseCase {
	uc.now = now
	return uc
}

// RegisterTenant crea en una transacción el tenant, su administrador y el rol admin con
// todos los permisos; después envía el email de verificación.
func (uc *AuthUseCase) RegisterTenant(ctx context.Context, in dto.RegisterTenantRequest) (*dto.RegisterTenantResponse, error) {
	name := strings.TrimSpace(in.TenantName)
	email := tenancy.NormalizeEmail(in.AdminEmail)
	if name == "" || email == "" {
		return nil, domain.ErrInvalidInput
	}
	hash, err := hashPassword(in.AdminPassword)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	tenant := &entity.Tenant{ID: uuid.New().String(), Name: name, IsActive: true, CreatedAt: now, UpdatedAt: now}
	adminName := in.AdminName
	if adminName == "" {
		adminName = email
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		TenantID:     tenant.ID,
		Email:        email,
		PasswordHash: hash,
		Name:         adminName,
		Status:       entity.UserActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	role := &entity.Role{
		ID:          uuid.New().String(),
		TenantID:    tenant.ID,
		Name:        entity.RoleAdmin,
		Description: "Administrador del tenant",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	var tok *entity.ConfirmationToken
	err = uc.tx.Run(ctx, func(tx repository.Tx) error {
		existing, err := tx.Tenants().GetByName(ctx, name)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		if err := tx.Tenants().Create(ctx, tenant); err != nil {
			return err
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			return err
		}
		if err := tx.Roles().CreateRole(ctx, role); err != nil {
			return err
		}
		if err := tx.Roles().GrantAll(ctx, tenant.ID, role.ID); err != nil {
			return err
		}
		if err := tx.Roles().AssignRole(ctx, tenant.ID, user.ID, role.ID); err != nil {
			return err
		}
		tok, err = uc.gate.IssueTx(ctx, tx, tenant.ID, user.ID, entity.ConfirmEmailVerification, nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("tenant_id", tenant.ID).Str("tenant", tenant.Name).Msg("tenant registrado")
	uc.send(ctx, tenant.ID, user, "Verifica tu email",
		fmt.Sprintf("Bienvenido a %s. Verifica tu email con este enlace:\n%s\n", tenant.Name, uc.gate.Link("public/verify-email", tok.Token)))
	return &dto.RegisterTenantResponse{Tenant: toTenantResponse(tenant), Admin: *toUserResponse(user)}, nil
}

// Login verifica email y contraseña y emite un JWT con el alcance del tenant. Si el email
// existe en varios tenants hace falta TenantID.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	users, err := uc.repos.Users().FindByEmail(ctx, tenancy.NormalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	var user *entity.User
	switch {
	case in.TenantID != "":
		for _, u := range users {
			if u.TenantID == in.TenantID {
				user = u
			}
		}
	case len(users) == 1:
		user = users[0]
	case len(users) > 1:
		return nil, fmt.Errorf("%w: el email pertenece a varios tenants, indique tenant_id", domain.ErrInvalidInput)
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != entity.UserActive {
		return nil, domain.ErrForbidden
	}
	tenant, err := uc.repos.Tenants().GetByID(ctx, user.TenantID)
	if err != nil {
		return nil, err
	}
	if tenant == nil || !tenant.IsActive {
		return nil, domain.ErrTenantInactive
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.TenantID, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{Token: token, User: *toUserResponse(user)}, nil
}

// VerifyEmail canjea un token email_verification y marca el email como verificado.
func (uc *AuthUseCase) VerifyEmail(ctx context.Context, token string) error {
	return uc.tx.Run(ctx, func(tx repository.Tx) error {
		t, err := uc.gate.ConsumeTx(ctx, tx, token, entity.ConfirmEmailVerification)
		if err != nil {
			return err
		}
		return tx.Users().MarkEmailVerified(ctx, t.TenantID, t.UserID, uc.now())
	})
}

// RequestPasswordReset envía un enlace de restablecimiento. No revela si el email existe:
// responde igual en ambos casos.
func (uc *AuthUseCase) RequestPasswordReset(ctx context.Context, in dto.PasswordResetRequest) error {
	user, err := uc.repos.Users().GetByEmail(ctx, in.TenantID, tenancy.NormalizeEmail(in.Email))
	if err != nil {
		return err
	}
	if user == nil || user.Status != entity.UserActive {
		uc.log.Debug().Str("tenant_id", in.TenantID).Msg("restablecimiento solicitado para un email desconocido")
		return nil
	}
	tok, err := uc.gate.Issue(ctx, user.TenantID, user.ID, entity.ConfirmPasswordReset, nil)
	if err != nil {
		return err
	}
	uc.send(ctx, user.TenantID, user, "Restablece tu contraseña",
		fmt.Sprintf("Para elegir una nueva contraseña abre este enlace:\n%s\nSi no lo solicitaste, ignora este mensaje.\n",
			uc.gate.Link("public/reset-password", tok.Token)))
	return nil
}

// ResetPassword canjea un token password_reset y guarda la nueva contraseña.
func (uc *AuthUseCase) ResetPassword(ctx context.Context, in dto.ResetPasswordRequest) error {
	hash, err := hashPassword(in.Password)
	if err != nil {
		return err
	}
	return uc.tx.Run(ctx, func(tx repository.Tx) error {
		t, err := uc.gate.ConsumeTx(ctx, tx, in.Token, entity.ConfirmPasswordReset)
		if err != nil {
			return err
		}
		return tx.Users().UpdatePassword(ctx, t.TenantID, t.UserID, hash, uc.now())
	})
}

func (uc *AuthUseCase) send(ctx context.Context, tenantID string, u *entity.User, subject, text string) {
	if uc.mail == nil {
		return
	}
	if err := uc.mail.EnqueueMessage(ctx, tenantID, ports.Message{To: u.Email, ToName: u.Name, Subject: subject, Text: text}); err != nil {
		uc.log.Error().Err(err).Str("tenant_id", tenantID).Str("subject", subject).Msg("no se pudo encolar el email")
	}
}

func hashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("%w: la contraseña debe tener al menos %d caracteres", domain.ErrInvalidInput, MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func toTenantResponse(t *entity.Tenant) dto.TenantResponse {
	return dto.TenantResponse{ID: t.ID, Name: t.Name, IsActive: t.IsActive, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:            u.ID,
		TenantID:      u.TenantID,
		Email:         u.Email,
		Name:          u.Name,
		Status:        u.Status,
		EmailVerified: u.EmailVerifiedAt != nil,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}
