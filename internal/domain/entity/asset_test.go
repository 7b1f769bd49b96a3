package entity_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

func TestPlacementConsistent_ExactamenteUno(t *testing.T) {
	loc := int64(3)
	bundle := int64(9)

	assert.True(t, (&entity.Asset{LocationID: &loc}).PlacementConsistent())
	assert.True(t, (&entity.Asset{BundleID: &bundle}).PlacementConsistent())
	assert.False(t, (&entity.Asset{}).PlacementConsistent(), "sin ubicación ni paquete")
	assert.False(t, (&entity.Asset{LocationID: &loc, BundleID: &bundle}).PlacementConsistent(), "ambos a la vez")
}

func TestLocation_IsIncoming(t *testing.T) {
	assert.True(t, (&entity.Location{Usage: entity.UsageSupplier}).IsIncoming())
	assert.True(t, (&entity.Location{Usage: entity.UsageProcurement}).IsIncoming())
	assert.False(t, (&entity.Location{Usage: entity.UsageInternal}).IsIncoming())
	assert.False(t, (&entity.Location{Usage: entity.UsageBundle}).IsIncoming())
}

func TestMovement_Aprobaciones(t *testing.T) {
	u := "validador"
	now := time.Now()

	m := &entity.Movement{State: entity.MovementDraft}
	assert.True(t, m.IsDraft())
	assert.False(t, m.DestApproved())
	assert.False(t, m.SrcApproved())

	m.ValidateUserID = &u
	m.DateVal = &now
	assert.True(t, m.DestApproved())
	assert.False(t, m.SrcApproved())

	m.SrcValidateUserID = &u
	assert.True(t, m.SrcApproved())
}
