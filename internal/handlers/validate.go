package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"storefront/internal/slug"
)

// maxJSONBody caps request bodies on JSON endpoints other than uploads.
const maxJSONBody = 1 << 20

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()/-]{5,19}$`)

var validate = newValidator()

// fieldError is one entry of the "details" list on a 400 response.
type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so details match what the client sent.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		switch name {
		case "-":
			return ""
		case "":
			return f.Name
		}
		return name
	})

	v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slug.Valid(fl.Field().String())
	})
	// sluggable titles yield a non-empty slug when none is given.
	v.RegisterValidation("sluggable", func(fl validator.FieldLevel) bool {
		return slug.Generate(fl.Field().String()) != ""
	})
	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(orderInput)
		if in.Email == "" && in.Phone == "" {
			sl.ReportError(in.Email, "email", "Email", "required_without", "phone")
		}
	}, orderInput{})

	return v
}

// Request bodies.

type categoryInput struct {
	Title    string `json:"title" validate:"required,max=200,sluggable"`
	Slug     string `json:"slug" validate:"omitempty,max=200,slug"`
	ParentID *int64 `json:"parentId" validate:"omitempty,gt=0"`
}

type reorderInput struct {
	OrderedProductIDs []int64 `json:"orderedProductIds" validate:"required,min=1,dive,gt=0"`
	Version           *int64  `json:"version" validate:"omitempty,gte=0"`
}

type productInput struct {
	Title         string     `json:"title" validate:"required,max=200,sluggable"`
	Slug          string     `json:"slug" validate:"omitempty,max=200,slug"`
	DescriptionMD string     `json:"descriptionMd" validate:"max=50000"`
	PriceCents    int        `json:"priceCents" validate:"gte=1"`
	CategoryID    *int64     `json:"categoryId" validate:"omitempty,gt=0"`
	CategoryIDs   []int64    `json:"categoryIds" validate:"omitempty,max=50,dive,gt=0"`
	SoldAt        *time.Time `json:"soldAt"`
	IsRecreatable bool       `json:"isRecreatable"`
}

type imageInput struct {
	ImagePath   string `json:"imagePath" validate:"required,max=500"`
	IsThumbnail bool   `json:"isThumbnail"`
}

type postInput struct {
	Title       string     `json:"title" validate:"required,max=300,sluggable"`
	Slug        string     `json:"slug" validate:"omitempty,max=300,slug"`
	ContentMD   string     `json:"contentMd" validate:"max=100000"`
	ImagePath   *string    `json:"imagePath" validate:"omitempty,max=500"`
	PublishedAt *time.Time `json:"publishedAt"`
}

type orderInput struct {
	ProductID int64  `json:"productId" validate:"gt=0"`
	Email     string `json:"email" validate:"omitempty,max=254,email"`
	Phone     string `json:"phone" validate:"omitempty,max=32,phone"`
}

type seenInput struct {
	Seen bool `json:"seen"`
}

// decodeAndValidate reads a JSON body into dst and validates it. On
// failure it writes the 400 response and returns false.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error:   "Invalid request",
			Details: validationDetails(err),
		})
		return false
	}
	return true
}

// validationDetails flattens validator errors into fieldErrors.
func validationDetails(err error) []fieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	details := make([]fieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, fieldError{
			Field: fieldPath(fe),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return details
}

// fieldPath drops the struct name from the namespace, so
// "reorderInput.orderedProductIds[2]" becomes "orderedProductIds[2]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}
