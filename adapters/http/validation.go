package http

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/hurmain7/devconnect/pkg/apperror"
)

// bindJSON decodes and validates the body into req. Failed checks come back
// as one *apperror.ValidationError whose messages are taken from the `msg`
// tag of each field.
func bindJSON(c *gin.Context, req any) error {
	err := c.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		// empty body: report the missing required fields instead
		err = binding.Validator.ValidateStruct(req)
	}
	if err == nil {
		return nil
	}
	return translateBindError(req, err)
}

func translateBindError(req any, err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return apperror.NewValidation(apperror.FieldError{Msg: "Request body must be valid JSON"})
	}

	t := reflect.TypeOf(req)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	fields := make([]apperror.FieldError, 0, len(ves))
	for _, fe := range ves {
		param := fe.Field()
		msg := fmt.Sprintf("%s is invalid", fe.Field())
		if sf, ok := t.FieldByName(fe.StructField()); ok {
			if name := strings.Split(sf.Tag.Get("json"), ",")[0]; name != "" {
				param = name
			}
			if m := sf.Tag.Get("msg"); m != "" {
				msg = m
			}
		}
		fields = append(fields, apperror.FieldError{Param: param, Msg: msg})
	}
	return apperror.NewValidation(fields...)
}
