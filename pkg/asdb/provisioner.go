package asdb

import "context"

// ProvisionStatus reports what Provisioner.Ensure did.
type ProvisionStatus int

const (
	ProvisionUnknown ProvisionStatus = iota
	Provisioned                      // target was copied from the template
	AlreadyPresent                   // target existed; nothing was done
)

// String returns a human-readable representation of the status.
func (s ProvisionStatus) String() string {
	switch s {
	case Provisioned:
		return "provisioned"
	case AlreadyPresent:
		return "already present"
	default:
		return "unknown"
	}
}

// Provisioner makes sure a working database file exists.
type Provisioner interface {
	// Ensure copies templatePath to targetPath if targetPath does not exist.
	// An existing target is never touched. Errors are *ProvisionError.
	Ensure(ctx context.Context, targetPath, templatePath string) (ProvisionStatus, error)
}
