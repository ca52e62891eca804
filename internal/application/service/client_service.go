package service

import (
	"context"
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sangkips/velo-register/internal/domain/entity"
	"github.com/sangkips/velo-register/internal/domain/repository"
	"github.com/sangkips/velo-register/pkg/apperror"
	"go.uber.org/zap"
)

var (
	emailPattern      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern      = regexp.MustCompile(`^[0-9\s+()-]+$`)
	postalCodePattern = regexp.MustCompile(`^\d{5}$`)
)

const minPhoneDigits = 10

var fieldMessages = map[string]string{
	"required":       "This field is required",
	"client_email":   "Invalid email format",
	"phone":          "Phone numbers contain digits, spaces, +, ( ) or - and at least 10 digits",
	"postal_code_fr": "Postal codes have 5 digits",
	"max":            "This value is too long",
}

// ClientService finds and creates clients in the back-office directory
type ClientService struct {
	gateway     repository.BackOfficeGateway
	credentials CredentialProvider
	validate    *validator.Validate
	logger      *zap.Logger
}

// NewClientService creates a new client service
func NewClientService(gateway repository.BackOfficeGateway, credentials CredentialProvider, logger *zap.Logger) *ClientService {
	return &ClientService{
		gateway:     gateway,
		credentials: credentials,
		validate:    newClientValidator(),
		logger:      logger.Named("clients"),
	}
}

func newClientValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("client_email", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return validPhone(fl.Field().String())
	})
	_ = v.RegisterValidation("postal_code_fr", func(fl validator.FieldLevel) bool {
		return postalCodePattern.MatchString(fl.Field().String())
	})
	return v
}

func validPhone(phone string) bool {
	if !phonePattern.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= minPhoneDigits
}

// Search returns the clients whose full name, email or phone contains query,
// ignoring case. An empty query returns every client the directory sends.
func (s *ClientService) Search(ctx context.Context, operatorID int64, query string) ([]entity.ClientRef, error) {
	tok, err := s.credentials.Token(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	clients, err := s.gateway.SearchClients(ctx, tok, query)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(query)
	matches := make([]entity.ClientRef, 0, len(clients))
	for _, c := range clients {
		if c.Matches(needle) {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

// Validate checks a new client before anything is sent to the directory
func (s *ClientService) Validate(input *entity.NewClientInput) error {
	input.Normalize()

	err := s.validate.Struct(input)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.NewBadRequestError(err.Error())
	}
	fieldErrors := make([]apperror.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = "Invalid value"
		}
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: fe.Field(), Message: msg})
	}
	return apperror.NewValidationError(fieldErrors)
}

// Create validates input and adds the client to the directory. The returned
// reference can be selected into a cart straight away.
func (s *ClientService) Create(ctx context.Context, operatorID int64, input entity.NewClientInput) (*entity.ClientRef, error) {
	if err := s.Validate(&input); err != nil {
		return nil, err
	}

	tok, err := s.credentials.Token(ctx, operatorID)
	if err != nil {
		return nil, err
	}

	ref, err := s.gateway.CreateClient(ctx, tok, input)
	if err != nil {
		return nil, err
	}
	s.logger.Info("client created", zap.Int64("client_id", ref.ID), zap.Int64("operator_id", operatorID))
	return ref, nil
}
