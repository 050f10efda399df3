package httpapi

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var errBadRequest = errors.New("bad request")

var registerOnce sync.Once

// rules are the custom validation tags used by request types.
var rules = map[string]validator.Func{
	"trimmed": notBlank,
}

// registerValidators adds the custom rules to gin's validator engine. A rule
// that cannot be registered is a programming error and panics.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		if err := registerRules(v, rules); err != nil {
			panic(fmt.Sprintf("httpapi: %v", err))
		}
	})
}

func registerRules(v *validator.Validate, rules map[string]validator.Func) error {
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register validation %q: %w", tag, err)
		}
	}
	return nil
}

// notBlank rejects strings that are empty after trimming.
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

func bindJSON(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return describe(err)
	}
	return nil
}

func bindQuery(c *gin.Context, req any) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return describe(err)
	}
	return nil
}

// describe turns binding failures into a message naming each field and
// rule, keeping validator errors matchable.
func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("field %q failed the '%s' rule", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("validation error: %s: %w", strings.Join(parts, "; "), verrs)
}
