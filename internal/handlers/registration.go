package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/gdg-garage/training-calculator/internal/models"
	"github.com/gdg-garage/training-calculator/internal/notifier"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RegisterCompanyAction is the AJAX action name the widget posts.
const RegisterCompanyAction = "register_company"

var ErrUnknownActivity = errors.New("unknown activity")

type RegistrationHandler struct {
	db       *gorm.DB
	notifier notifier.Notifier
	validate *validator.Validate
	logger   *zap.Logger
}

func NewRegistrationHandler(db *gorm.DB, notifier notifier.Notifier, logger *zap.Logger) *RegistrationHandler {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("form"); name != "" {
			return name
		}
		return fld.Name
	})
	return &RegistrationHandler{db: db, notifier: notifier, validate: validate, logger: logger}
}

// Submission is one posted registration form.
type Submission struct {
	Name          string `form:"company--name" validate:"required,max=255"`
	ActivityID    uint   `form:"company--type" validate:"required"`
	EmployeeCount int    `form:"company--employeecount" validate:"gte=0"`
	TraineeCount  int    `form:"training--traineecount" validate:"gte=0"`
	ContactPerson string `form:"company--contactperson" validate:"required,max=255"`
	Email         string `form:"company--email" validate:"required,email,max=255"`
	ContactMobile string `form:"company--contactmobile" validate:"required,max=50"`
	Courses       string `form:"training--courses" validate:"max=2000"`
	Languages     string `form:"training--language" validate:"max=2000"`
	Locations     string `form:"training--location" validate:"max=2000"`
	Percentage    int    `form:"training--percentage" validate:"gte=0,lte=100"`
}

// ValidationError lists the form fields that were rejected.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "Invalid fields: " + strings.Join(e.Fields, ", ")
}

// ParseSubmission reads a Submission from form values. Numeric fields that
// are present but not integers are reported as invalid.
func ParseSubmission(get func(string) string) (Submission, []string) {
	var bad []string
	atoi := func(field string) int {
		raw := strings.TrimSpace(get(field))
		if raw == "" {
			return 0
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			bad = append(bad, field)
		}
		return n
	}

	s := Submission{
		Name:          strings.TrimSpace(get("company--name")),
		EmployeeCount: atoi("company--employeecount"),
		TraineeCount:  atoi("training--traineecount"),
		ContactPerson: strings.TrimSpace(get("company--contactperson")),
		Email:         strings.TrimSpace(get("company--email")),
		ContactMobile: strings.TrimSpace(get("company--contactmobile")),
		Courses:       strings.TrimSpace(get("training--courses")),
		Languages:     strings.TrimSpace(get("training--language")),
		Locations:     strings.TrimSpace(get("training--location")),
		Percentage:    atoi("training--percentage"),
	}
	if activity := atoi("company--type"); activity > 0 {
		s.ActivityID = uint(activity)
	}
	return s, bad
}

func (h *RegistrationHandler) validateSubmission(s Submission, bad []string) error {
	fields := append([]string(nil), bad...)
	if err := h.validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
	}
	if len(fields) == 0 {
		return nil
	}
	sort.Strings(fields)
	return &ValidationError{Fields: dedupe(fields)}
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}

// Register validates and stores a submission, returning the new row.
func (h *RegistrationHandler) Register(ctx context.Context, s Submission) (*models.Registration, string, error) {
	var activity models.Activity
	if err := h.db.WithContext(ctx).First(&activity, s.ActivityID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUnknownActivity
		}
		return nil, "", fmt.Errorf("failed to load activity: %w", err)
	}

	registration := models.Registration{
		RegistrationFields: models.RegistrationFields{
			Name:          s.Name,
			ActivityID:    s.ActivityID,
			EmployeeCount: s.EmployeeCount,
			TraineeCount:  s.TraineeCount,
			ContactPerson: s.ContactPerson,
			Email:         s.Email,
			ContactMobile: s.ContactMobile,
			Courses:       s.Courses,
			Languages:     s.Languages,
			Locations:     s.Locations,
			Percentage:    s.Percentage,
		},
	}
	if err := h.db.WithContext(ctx).Create(&registration).Error; err != nil {
		return nil, "", fmt.Errorf("failed to insert registration: %w", err)
	}
	return &registration, activity.NameEn, nil
}

// HandleAjax dispatches admin-ajax style requests on their action field.
func (h *RegistrationHandler) HandleAjax(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "0", http.StatusBadRequest)
		return
	}

	switch r.FormValue("action") {
	case RegisterCompanyAction:
		h.HandleRegister(w, r)
	default:
		http.Error(w, "0", http.StatusBadRequest)
	}
}

// HandleRegister stores one registration and answers with its id as text.
func (h *RegistrationHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Malformed form body", http.StatusBadRequest)
		return
	}

	submission, bad := ParseSubmission(r.PostFormValue)
	if err := h.validateSubmission(submission, bad); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			http.Error(w, verr.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("Validation failed", zap.Error(err))
		http.Error(w, "Failed to validate registration", http.StatusInternalServerError)
		return
	}

	registration, activity, err := h.Register(r.Context(), submission)
	if errors.Is(err, ErrUnknownActivity) {
		http.Error(w, "Invalid fields: company--type", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Error("Failed to store registration", zap.Error(err))
		http.Error(w, "Failed to store registration", http.StatusInternalServerError)
		return
	}

	h.logger.Info("Registration received",
		zap.Uint("id", registration.ID),
		zap.String("company", registration.Name),
		zap.String("category", models.Category(registration.Percentage)),
	)

	if h.notifier != nil {
		if err := h.notifier.NotifyRegistration(*registration, activity); err != nil {
			h.logger.Warn("Failed to send registration notification", zap.Uint("id", registration.ID), zap.Error(err))
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(strconv.FormatUint(uint64(registration.ID), 10)))
}
