package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"hoctap-backend/internal/services"
)

const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return decode(w, r, dst, false)
}

func decodeOptionalJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return decode(w, r, dst, true)
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}, optional bool) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			return services.ErrBadRequest(services.MsgInvalidPayload)
		}
	}
	return validateStruct(dst)
}

func validateStruct(dst interface{}) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return services.ErrBadRequest(services.MsgInvalidPayload)
	}
	fields := make([]services.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, services.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return services.ErrValidation(services.MsgInvalidPayload, fields...)
}

func fieldMessage(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return services.MsgRequired
	case "email":
		return "Email không hợp lệ"
	case "uuid", "uuid4", "uuid_rfc4122":
		return services.MsgInvalidID
	case "min":
		if isString {
			return fmt.Sprintf("Phải có ít nhất %s ký tự", fe.Param())
		}
		return fmt.Sprintf("Giá trị tối thiểu là %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("Không được vượt quá %s ký tự", fe.Param())
		}
		return fmt.Sprintf("Giá trị tối đa là %s", fe.Param())
	case "gte":
		return fmt.Sprintf("Phải lớn hơn hoặc bằng %s", fe.Param())
	case "lte":
		return fmt.Sprintf("Phải nhỏ hơn hoặc bằng %s", fe.Param())
	case "url":
		return "URL không hợp lệ"
	}
	return services.MsgInvalidPayload
}

func pathID(r *http.Request, name string) (string, error) {
	return services.CanonicalID(chi.URLParam(r, name))
}
