package services

import "github.com/jankeeper/jankeeper/models"

// Actor is the authenticated identity making a request, resolved from
// the JWT by the middleware and passed explicitly into every service
// call that needs a permission decision.
type Actor struct {
	ID      string
	IsAdmin bool
}

// The lifecycle guard centralizes which mutations are legal for a
// section in its current status and for the acting user. Role failures
// return ErrPermissionDenied; status failures return the matching
// state error. Permission is checked before status.

func canManageSection(section *models.Section, actor Actor) bool {
	return actor.IsAdmin || section.IsCreatedBy(actor.ID)
}

// checkGameWrite guards creating a game or replacing its scores:
// participant or admin, and only while the section is active.
func checkGameWrite(section *models.Section, actor Actor) error {
	if !actor.IsAdmin && !section.HasParticipant(actor.ID) {
		return ErrPermissionDenied
	}
	if section.Status != models.SectionActive {
		return ErrSectionNotActive
	}
	return nil
}

// checkGameDelete guards deleting a game: creator or admin, active only.
func checkGameDelete(section *models.Section, actor Actor) error {
	if !canManageSection(section, actor) {
		return ErrPermissionDenied
	}
	if section.Status != models.SectionActive {
		return ErrSectionNotActive
	}
	return nil
}

// checkSectionClose guards the active → closed transition.
func checkSectionClose(section *models.Section, actor Actor) error {
	if !canManageSection(section, actor) {
		return ErrPermissionDenied
	}
	if section.Status != models.SectionActive {
		return ErrSectionNotActive
	}
	return nil
}

// checkSectionReopen guards the closed → active transition.
func checkSectionReopen(section *models.Section, actor Actor) error {
	if !canManageSection(section, actor) {
		return ErrPermissionDenied
	}
	if section.Status != models.SectionClosed {
		return ErrSectionNotClosed
	}
	return nil
}

// checkSectionManage guards editing the section's settings or soft
// deleting it, allowed in any status.
func checkSectionManage(section *models.Section, actor Actor) error {
	if !canManageSection(section, actor) {
		return ErrPermissionDenied
	}
	return nil
}
