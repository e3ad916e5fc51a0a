package errors

import (
	"errors"
	"fmt"
)

type ErrorDump struct {
	TopMessage string   `json:"top_message"`
	Code       Code     `json:"code,omitempty"`
	Chain      []string `json:"chain,omitempty"`

	// ProcessorStatus is the HTTP status the processor answered with, when known.
	ProcessorStatus int `json:"processor_status,omitempty"`
}

type statusCoder interface {
	StatusCode() int
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{
		TopMessage: err.Error(),
	}

	if te := As(err); te != nil {
		d.Code = te.Code()
	}

	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		d.ProcessorStatus = sc.StatusCode()
	}

	return d
}
