// Package ecode builds the short, uniform messages used in errors across the
// module, for example:
//
//	errors.New("paging: " + ecode.Closed("paginator"))     // "paging: paginator closed"
//	fmt.Errorf("memory: %s", ecode.NotExist("document a")) // "memory: document a does not exist"
package ecode
