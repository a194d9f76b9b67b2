package enums

// StorageType classifies how an item must be kept on the floor.
type StorageType string

const (
	StorageTypeAmbient StorageType = "ambient"
	StorageTypeChilled StorageType = "chilled"
	StorageTypeFrozen  StorageType = "frozen"
)

func (t StorageType) String() string {
	return string(t)
}

func (t StorageType) IsValid() bool {
	return t == StorageTypeAmbient || t == StorageTypeChilled || t == StorageTypeFrozen
}
