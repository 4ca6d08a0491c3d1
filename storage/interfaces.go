package storage

import "nypd-dashboard/models"

// ComplaintWriter is the interface any export backend for cleaned complaints must satisfy.
type ComplaintWriter interface {
	Write(complaints []models.Complaint) error
	Close() error
}
