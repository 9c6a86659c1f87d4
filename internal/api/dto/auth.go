package dto

import (
	"net/http"
	"sort"
	"strings"

	"github.com/hugh/go-portal/internal/api/validation"
)

// fieldOrder decides which validation error is shown first on a form.
var fieldOrder = []string{"name", "surname", "address", "phone", "email", "username", "orgname", "password"}

type LoginForm struct {
	Identity string
	Password string
}

// ParseLoginForm reads the identity from field (username or orgname).
func ParseLoginForm(r *http.Request, field string) LoginForm {
	return LoginForm{
		Identity: r.PostFormValue(field),
		Password: r.PostFormValue("password"),
	}
}

func (f LoginForm) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(f.Identity) == "" {
		errors["username"] = "Username is required"
	}
	if f.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type RegisterUserForm struct {
	Name     string
	Surname  string
	Username string
	Email    string
	Password string
}

func ParseRegisterUserForm(r *http.Request) RegisterUserForm {
	return RegisterUserForm{
		Name:     clean(r.PostFormValue("name")),
		Surname:  clean(r.PostFormValue("surname")),
		Username: cleanIdentity(r.PostFormValue("username")),
		Email:    clean(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}
}

func (f RegisterUserForm) Validate() map[string]string {
	errors := make(map[string]string)

	if f.Name == "" {
		errors["name"] = "Name is required"
	}
	if f.Surname == "" {
		errors["surname"] = "Surname is required"
	}
	if ok, msg := validation.IsValidIdentity(f.Username); !ok {
		errors["username"] = "Username " + msg
	}
	if f.Email != "" && !validation.IsValidEmail(f.Email) {
		errors["email"] = "Email address is not valid"
	}
	if ok, msg := validation.IsValidPassword(f.Password); !ok {
		errors["password"] = msg
	}

	return errors
}

// Values echoes the submitted fields back into the form, minus the password.
func (f RegisterUserForm) Values() map[string]string {
	return map[string]string{
		"name":     f.Name,
		"surname":  f.Surname,
		"username": f.Username,
		"email":    f.Email,
	}
}

type RegisterOrgForm struct {
	Name     string
	Address  string
	Phone    string
	Email    string
	Orgname  string
	Password string
}

func ParseRegisterOrgForm(r *http.Request) RegisterOrgForm {
	return RegisterOrgForm{
		Name:     clean(r.PostFormValue("name")),
		Address:  clean(r.PostFormValue("address")),
		Phone:    clean(r.PostFormValue("phone")),
		Email:    clean(r.PostFormValue("email")),
		Orgname:  cleanIdentity(r.PostFormValue("orgname")),
		Password: r.PostFormValue("password"),
	}
}

func (f RegisterOrgForm) Validate() map[string]string {
	errors := make(map[string]string)

	if f.Name == "" {
		errors["name"] = "Name is required"
	}
	if f.Address == "" {
		errors["address"] = "Address is required"
	}
	if !validation.IsValidPhone(f.Phone) {
		errors["phone"] = "Phone number is not valid"
	}
	if !validation.IsValidEmail(f.Email) {
		errors["email"] = "Email address is not valid"
	}
	if ok, msg := validation.IsValidIdentity(f.Orgname); !ok {
		errors["orgname"] = "Organization name " + msg
	}
	if ok, msg := validation.IsValidPassword(f.Password); !ok {
		errors["password"] = msg
	}

	return errors
}

func (f RegisterOrgForm) Values() map[string]string {
	return map[string]string{
		"name":    f.Name,
		"address": f.Address,
		"phone":   f.Phone,
		"email":   f.Email,
		"orgname": f.Orgname,
	}
}

// FirstError picks a single message to show inline, in form field order.
func FirstError(errors map[string]string) string {
	for _, field := range fieldOrder {
		if msg, ok := errors[field]; ok {
			return msg
		}
	}

	keys := make([]string, 0, len(errors))
	for k := range errors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) > 0 {
		return errors[keys[0]]
	}
	return ""
}

// cleanIdentity only trims. Control characters are left in so that
// validation rejects them instead of storing a different name.
func cleanIdentity(s string) string {
	return strings.TrimSpace(s)
}

func clean(s string) string {
	return validation.TruncateString(strings.TrimSpace(validation.SanitizeString(s)), validation.MaxFieldLength)
}
