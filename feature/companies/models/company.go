package models

import (
	"time"

	"company-manager/core/reconcile"
)

// Company is a reconciled company row in the catalogue database.
type Company struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	PortalID   string    `gorm:"column:portal_id;type:varchar(64);index" json:"id"`
	Code       int64     `gorm:"column:code;uniqueIndex;not null" json:"codigo"`
	ShortName  string    `gorm:"column:short_name;type:varchar(255);index" json:"nome_abreviado"`
	LegalName  string    `gorm:"column:legal_name;type:varchar(255)" json:"razao_social"`
	CNPJ       string    `gorm:"column:cnpj;type:varchar(32)" json:"cnpj"`
	City       string    `gorm:"column:city;type:varchar(128)" json:"cidade,omitempty"`
	State      string    `gorm:"column:state;type:varchar(8)" json:"uf,omitempty"`
	Active     *bool     `gorm:"column:active" json:"ativo,omitempty"`
	SnapshotID uint      `gorm:"column:snapshot_id;index" json:"-"`
	UpdatedAt  time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name.
func (Company) TableName() string {
	return "companies"
}

// CompanyColumns are the columns the repository reads and writes.
var CompanyColumns = []string{
	"id", "portal_id", "code", "short_name", "legal_name", "cnpj",
	"city", "state", "active", "snapshot_id", "updated_at",
}

// FromRecord converts a fetched portal record into a row of the given snapshot.
func FromRecord(r reconcile.Company, snapshotID uint) Company {
	return Company{
		PortalID:   r.ID,
		Code:       r.Code,
		ShortName:  r.ShortName,
		LegalName:  r.LegalName,
		CNPJ:       r.CNPJ,
		City:       r.City,
		State:      r.State,
		Active:     r.Active,
		SnapshotID: snapshotID,
	}
}

// ToRecord converts the row back into the portal record shape.
func (c Company) ToRecord() reconcile.Company {
	return reconcile.Company{
		ID:        c.PortalID,
		Code:      c.Code,
		ShortName: c.ShortName,
		LegalName: c.LegalName,
		CNPJ:      c.CNPJ,
		City:      c.City,
		State:     c.State,
		Active:    c.Active,
	}
}
