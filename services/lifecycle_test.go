package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jankeeper/jankeeper/models"
)

func guardSection(status models.SectionStatus) *models.Section {
	creator := "creator"
	return &models.Section{
		ID:        "section-1",
		Status:    status,
		CreatedBy: &creator,
		Participants: []models.SectionParticipant{
			{UserID: "creator"},
			{UserID: "member"},
		},
	}
}

var (
	creatorActor  = Actor{ID: "creator"}
	memberActor   = Actor{ID: "member"}
	outsiderActor = Actor{ID: "outsider"}
	adminActor    = Actor{ID: "admin", IsAdmin: true}
)

func TestCheckGameWrite(t *testing.T) {
	tests := []struct {
		name    string
		status  models.SectionStatus
		actor   Actor
		wantErr error
	}{
		{"member on active section", models.SectionActive, memberActor, nil},
		{"creator on active section", models.SectionActive, creatorActor, nil},
		{"admin who is not a participant", models.SectionActive, adminActor, nil},
		{"outsider", models.SectionActive, outsiderActor, ErrPermissionDenied},
		{"member on closed section", models.SectionClosed, memberActor, ErrSectionNotActive},
		{"outsider on closed section gets permission error first", models.SectionClosed, outsiderActor, ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkGameWrite(guardSection(tt.status), tt.actor)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckGameDelete(t *testing.T) {
	tests := []struct {
		name    string
		status  models.SectionStatus
		actor   Actor
		wantErr error
	}{
		{"creator on active section", models.SectionActive, creatorActor, nil},
		{"admin", models.SectionActive, adminActor, nil},
		{"member is not enough", models.SectionActive, memberActor, ErrPermissionDenied},
		{"creator on closed section", models.SectionClosed, creatorActor, ErrSectionNotActive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkGameDelete(guardSection(tt.status), tt.actor)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckSectionTransitions(t *testing.T) {
	assert.NoError(t, checkSectionClose(guardSection(models.SectionActive), creatorActor))
	assert.ErrorIs(t, checkSectionClose(guardSection(models.SectionClosed), creatorActor), ErrSectionNotActive)
	assert.ErrorIs(t, checkSectionClose(guardSection(models.SectionActive), memberActor), ErrPermissionDenied)

	assert.NoError(t, checkSectionReopen(guardSection(models.SectionClosed), adminActor))
	assert.ErrorIs(t, checkSectionReopen(guardSection(models.SectionActive), creatorActor), ErrSectionNotClosed)
	assert.ErrorIs(t, checkSectionReopen(guardSection(models.SectionClosed), outsiderActor), ErrPermissionDenied)
}

func TestCheckSectionManageIgnoresStatus(t *testing.T) {
	for _, status := range []models.SectionStatus{models.SectionActive, models.SectionClosed} {
		assert.NoError(t, checkSectionManage(guardSection(status), creatorActor))
		assert.NoError(t, checkSectionManage(guardSection(status), adminActor))
		assert.ErrorIs(t, checkSectionManage(guardSection(status), memberActor), ErrPermissionDenied)
	}
}
