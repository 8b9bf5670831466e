package validate

import "github.com/nicktill/promcheck/pkg/exposition"

// File- and directory-level classifications. They share the ErrorKind type
// with line-level errors so summaries carry a single reason field.
const (
	FileNotFound      exposition.ErrorKind = "FileNotFound"
	IOError           exposition.ErrorKind = "IOError"
	DirectoryNotFound exposition.ErrorKind = "DirectoryNotFound"
)
