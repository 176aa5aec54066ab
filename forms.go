package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// nonFieldErrors keys errors that belong to the form as a whole.
const nonFieldErrors = "form"

var (
	slugPattern     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

	// Slugs that collide with fixed paths under /post/.
	reservedSlugs = map[string]bool{"new": true}

	validate = newValidator()
)

// bcrypt ignores input past this many bytes and refuses to hash it.
const maxPasswordBytes = 72

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return field.Name
		}
		return name
	})

	mustRegister := func(tag string, fn validator.Func) {
		if err := v.RegisterValidation(tag, fn); err != nil {
			panic(err)
		}
	}
	mustRegister("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	mustRegister("notreserved", func(fl validator.FieldLevel) bool {
		return !reservedSlugs[strings.ToLower(fl.Field().String())]
	})
	mustRegister("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	mustRegister("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	mustRegister("notnumeric", func(fl validator.FieldLevel) bool {
		return strings.TrimFunc(fl.Field().String(), func(r rune) bool { return r >= '0' && r <= '9' }) != ""
	})

	return v
}

// FieldErrors maps a form field name to its validation messages.
type FieldErrors map[string][]string

func (e FieldErrors) Add(field, message string) {
	e[field] = append(e[field], message)
}

func (e FieldErrors) Has(field string) bool {
	return len(e[field]) > 0
}

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(e[field], " "))
	}
	return strings.Join(parts, "; ")
}

// collect runs the struct rules on form and records every failure. Errors
// other than rule failures are returned as is.
func (e FieldErrors) collect(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		e.Add(fe.Field(), validationMessage(fe))
	}
	return nil
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		value, _ := fe.Value().(string)
		return fmt.Sprintf("Ensure this value has at most %s characters (it has %d).", fe.Param(), utf8.RuneCountInString(value))
	case "min":
		return fmt.Sprintf("This password is too short. It must contain at least %s characters.", fe.Param())
	case "slug":
		return "Enter a valid slug consisting of letters, numbers, underscores or hyphens."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	case "notreserved":
		return "This slug is reserved. Choose another one."
	case "bcryptlen":
		return fmt.Sprintf("This password is too long. It must contain at most %d bytes.", maxPasswordBytes)
	case "notnumeric":
		return "This password is entirely numeric."
	case "eqfield":
		return "The two password fields didn't match."
	default:
		return "Enter a valid value."
	}
}

func checkboxValue(value string) bool {
	switch strings.ToLower(value) {
	case "", "false", "0", "off":
		return false
	default:
		return true
	}
}

type PostForm struct {
	Title       string `form:"title" validate:"required,max=200"`
	Slug        string `form:"slug" validate:"required,max=200,slug,notreserved"`
	ContentMD   string `form:"content_md" validate:"required"`
	IsPublished bool   `form:"is_published"`
}

func newPostForm(r *http.Request) PostForm {
	return PostForm{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Slug:        strings.TrimSpace(r.PostFormValue("slug")),
		ContentMD:   strings.TrimSpace(r.PostFormValue("content_md")),
		IsPublished: checkboxValue(r.PostFormValue("is_published")),
	}
}

// Validate checks the submitted fields and, when they are acceptable, builds
// an unsaved post without an author. Field problems come back as FieldErrors.
func (f PostForm) Validate(ctx context.Context, store Store) (*Post, error) {
	errs := make(FieldErrors)
	if err := errs.collect(f); err != nil {
		return nil, err
	}

	if !errs.Has("slug") {
		exists, err := store.SlugExists(ctx, f.Slug)
		if err != nil {
			return nil, err
		}
		if exists {
			errs.Add("slug", duplicateSlugMessage)
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return &Post{
		Title:       f.Title,
		Slug:        f.Slug,
		ContentMD:   f.ContentMD,
		IsPublished: f.IsPublished,
	}, nil
}

const duplicateSlugMessage = "Post with this slug already exists."

type SignupForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Password1 string `form:"password1" validate:"required,min=8,bcryptlen,notnumeric"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

func newSignupForm(r *http.Request) SignupForm {
	return SignupForm{
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}
}

// Validate returns an unsaved, non-superuser account.
func (f SignupForm) Validate(ctx context.Context, store Store) (*User, error) {
	errs := make(FieldErrors)
	if err := errs.collect(f); err != nil {
		return nil, err
	}

	if !errs.Has("username") {
		_, err := store.UserByUsername(ctx, f.Username)
		switch {
		case err == nil:
			errs.Add("username", duplicateUsernameMessage)
		case !errors.Is(err, ErrNotFound):
			return nil, err
		}
	}

	if len(errs) > 0 {
		return nil, errs
	}

	return newUser(f.Username, f.Password1, false)
}

const duplicateUsernameMessage = "A user with that username already exists."

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func newLoginForm(r *http.Request) LoginForm {
	return LoginForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Password: r.PostFormValue("password"),
	}
}

// Authenticate returns the account matching the submitted credentials.
func (f LoginForm) Authenticate(ctx context.Context, store Store) (*User, error) {
	errs := make(FieldErrors)
	if err := errs.collect(f); err != nil {
		return nil, err
	}
	if len(errs) > 0 {
		return nil, errs
	}

	user, err := store.UserByUsername(ctx, f.Username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	hash := dummyPasswordHash()
	if user != nil {
		hash = user.PasswordHash
	}
	// Unknown usernames still pay for a bcrypt comparison.
	if !checkPassword(hash, f.Password) || user == nil {
		errs.Add(nonFieldErrors, "Please enter a correct username and password. Note that both fields may be case-sensitive.")
		return nil, errs
	}
	return user, nil
}
