package enums

// InboundItemStatus marks whether a received line has been put away.
type InboundItemStatus string

const (
	InboundItemStatusPending InboundItemStatus = "pending"
	InboundItemStatusStored  InboundItemStatus = "stored"
)

func (s InboundItemStatus) String() string {
	return string(s)
}

func (s InboundItemStatus) IsValid() bool {
	return s == InboundItemStatusPending || s == InboundItemStatusStored
}
