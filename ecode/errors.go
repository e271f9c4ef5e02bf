package ecode

import (
	"fmt"
)

const (
	emptyMsg    = "empty"
	requiredMsg = "required"
	invalidMsg  = "invalid"
	failedMsg   = "failed"
	notExistMsg = "does not exist"
	closedMsg   = "closed"
)

// FieldIsEmpty returns field empty message
func FieldIsEmpty(k ...string) string {
	return withKey(emptyMsg, k...)
}

// FieldIsRequired returns field required message
func FieldIsRequired(k ...string) string {
	return withKey(requiredMsg, k...)
}

// FieldIsInvalid returns field invalid message
func FieldIsInvalid(k ...string) string {
	return withKey(invalidMsg, k...)
}

// Failed returns failed message
func Failed(k ...string) string {
	return withKey(failedMsg, k...)
}

// NotExist returns not exist message
func NotExist(k ...string) string {
	return withKey(notExistMsg, k...)
}

// Closed returns closed message
func Closed(k ...string) string {
	return withKey(closedMsg, k...)
}

func withKey(msg string, k ...string) string {
	if len(k) > 0 && k[0] != "" {
		return fmt.Sprintf("%s %s", k[0], msg)
	}
	return msg
}
