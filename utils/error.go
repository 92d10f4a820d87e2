package utils

import "errors"

// ErrorRecordNotFound masks gorm's not-found error at the model layer
// so handlers can map it to a 404 without importing gorm.
var ErrorRecordNotFound = errors.New("record not found")
