package model

// Operator is a provisioned shop-floor operator identity. Immutable once
// created; provisioning happens out of band (seed or admin tooling).
type Operator struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"not null"`
}

type OperatorList []Operator

// Machine is a provisioned machine identity. Immutable once created.
type Machine struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"not null"`
}

type MachineList []Machine
