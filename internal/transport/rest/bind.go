package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/heartmarshall/eduprompt-backend/internal/domain"
)

// binder decodes JSON bodies into request DTOs and runs their validate tags.
type binder struct {
	validate *validator.Validate
	trans    ut.Translator
	maxBody  int64
}

func newBinder(maxBody int64) *binder {
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	locale := en.New()
	trans, _ := ut.New(locale, locale).GetTranslator("en")
	_ = entranslations.RegisterDefaultTranslations(v, trans)
	_ = v.RegisterTranslation("notblank", trans,
		func(tr ut.Translator) error { return tr.Add("notblank", "{0} must not be blank", true) },
		func(tr ut.Translator, fe validator.FieldError) string {
			msg, _ := tr.T("notblank", fe.Field())
			return msg
		},
	)

	return &binder{validate: v, trans: trans, maxBody: maxBody}
}

// decode reads the JSON body into dst and validates it. Every failure is a
// *domain.ValidationError.
func (b *binder) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	return b.read(w, r, dst, false)
}

// decodeOptional is decode for endpoints whose body may be omitted.
func (b *binder) decodeOptional(w http.ResponseWriter, r *http.Request, dst any) error {
	return b.read(w, r, dst, true)
}

func (b *binder) read(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, b.maxBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if !optional || !errors.Is(err, io.EOF) {
			return decodeError(err)
		}
	}
	return b.check(dst)
}

// check runs the validate tags of v.
func (b *binder) check(v any) error {
	err := b.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewValidationError("body", err.Error())
	}
	out := make([]domain.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, domain.FieldError{Field: fieldPath(fe), Message: fe.Translate(b.trans)})
	}
	return domain.NewValidationErrors(out)
}

// fieldPath drops the root struct name from the namespace: "req.items[0].name"
// becomes "items[0].name".
func fieldPath(fe validator.FieldError) string {
	_, rest, found := strings.Cut(fe.Namespace(), ".")
	if !found {
		return fe.Field()
	}
	return rest
}

func decodeError(err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		sizeErr   *http.MaxBytesError
	)
	switch {
	case errors.Is(err, io.EOF):
		return domain.NewValidationError("body", "request body is empty")
	case errors.As(err, &sizeErr):
		return domain.NewValidationError("body", fmt.Sprintf("request body exceeds %d bytes", sizeErr.Limit))
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return domain.NewValidationError("body", "malformed JSON")
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return domain.NewValidationError(field, fmt.Sprintf("must be %s", typeErr.Type))
	default:
		return domain.NewValidationError("body", "invalid request body")
	}
}
