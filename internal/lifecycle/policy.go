package lifecycle

import "github.com/noah-isme/lms-api/internal/models"

// Entity names a moderated content type.
type Entity string

const (
	EntityVideo        Entity = "video"
	EntityGalleryImage Entity = "gallery_image"
	EntityLibraryBook  Entity = "library_book"
	EntityLibraryVideo Entity = "library_video"
	EntityInvoice      Entity = "invoice"
	EntitySchool       Entity = "school"
)

// Op names a lifecycle transition.
type Op string

const (
	OpCreate  Op = "create"
	OpUpdate  Op = "update"
	OpApprove Op = "approve"
	OpReject  Op = "reject"
	OpDelete  Op = "delete"
	OpViewBin Op = "view_bin"
	OpRestore Op = "restore"
	OpPurge   Op = "purge"
)

// Policy is the permission matrix: which roles may perform which transition
// on which entity type.
type Policy map[Entity]map[Op][]models.UserRole

// DefaultPolicy returns the fixed per-entity role matrix. Each entity keeps
// its historical asymmetries: gallery deletion/restoration is shared with
// schools, library book restore is admin-only even though schools may
// delete, and invoices have no recycle bin.
func DefaultPolicy() Policy {
	adminOnly := []models.UserRole{models.RoleAdmin}
	adminInstructor := []models.UserRole{models.RoleAdmin, models.RoleInstructor}
	adminSchool := []models.UserRole{models.RoleAdmin, models.RoleSchool}

	return Policy{
		EntityVideo: {
			OpCreate:  adminInstructor,
			OpUpdate:  adminInstructor,
			OpApprove: adminOnly,
			OpReject:  adminOnly,
			OpDelete:  adminInstructor,
			OpViewBin: adminInstructor,
			OpRestore: adminInstructor,
			OpPurge:   adminInstructor,
		},
		EntityGalleryImage: {
			OpCreate:  adminSchool,
			OpUpdate:  adminSchool,
			OpApprove: adminOnly,
			OpReject:  adminOnly,
			OpDelete:  adminSchool,
			OpViewBin: adminSchool,
			OpRestore: adminSchool,
			OpPurge:   adminSchool,
		},
		EntityLibraryBook: {
			OpCreate:  adminSchool,
			OpUpdate:  adminSchool,
			OpApprove: adminOnly,
			OpReject:  adminOnly,
			OpDelete:  adminSchool,
			OpViewBin: adminOnly,
			OpRestore: adminOnly,
			OpPurge:   adminOnly,
		},
		EntityLibraryVideo: {
			OpCreate:  adminOnly,
			OpUpdate:  adminOnly,
			OpApprove: adminOnly,
			OpReject:  adminOnly,
			OpDelete:  adminOnly,
			OpViewBin: adminOnly,
			OpRestore: adminOnly,
			OpPurge:   adminOnly,
		},
		EntityInvoice: {
			OpCreate:  []models.UserRole{models.RoleInstructor},
			OpUpdate:  []models.UserRole{models.RoleInstructor},
			OpApprove: adminOnly,
			OpReject:  adminOnly,
			OpDelete:  []models.UserRole{models.RoleInstructor},
		},
		EntitySchool: {
			OpApprove: adminOnly,
			OpReject:  adminOnly,
			OpUpdate:  adminOnly,
			OpDelete:  adminOnly,
		},
	}
}

// Allowed reports whether the role may perform op on the entity.
func (p Policy) Allowed(entity Entity, op Op, role models.UserRole) bool {
	ops, ok := p[entity]
	if !ok {
		return false
	}
	for _, r := range ops[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Roles returns the roles permitted for op on the entity, for route wiring.
func (p Policy) Roles(entity Entity, op Op) []models.UserRole {
	ops, ok := p[entity]
	if !ok {
		return nil
	}
	return ops[op]
}
