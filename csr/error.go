package csr

import "golang.org/x/xerrors"

var (
	//ErrOpeningFile is returned when a required source or destination file cannot be opened
	ErrOpeningFile = xerrors.New("unable to open file")

	//ErrParse is returned for malformed edge input or sources that are not sorted in non-decreasing order
	ErrParse = xerrors.New("malformed edge input")

	//ErrLoad is returned when reading or writing the underlying CSR data files fails
	ErrLoad = xerrors.New("unable to load graph data")

	//ErrFs is returned for general filesystem failures such as directory creation or stat
	ErrFs = xerrors.New("filesystem operation failed")
)
