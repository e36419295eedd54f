package constants

// CoupleStatus is the lifecycle status stored on couples.status.
type CoupleStatus string

// Stable values (store these exact strings in DB).
const (
	StatusProspect  CoupleStatus = "prospect"
	StatusBooked    CoupleStatus = "booked"
	StatusCompleted CoupleStatus = "completed"
	StatusCancelled CoupleStatus = "cancelled"
)

var CoupleStatuses = []string{
	string(StatusProspect),
	string(StatusBooked),
	string(StatusCompleted),
	string(StatusCancelled),
}

// ExtrasOrderStatus is stored on extras_orders.status.
type ExtrasOrderStatus string

const (
	ExtrasQuoted    ExtrasOrderStatus = "quoted"
	ExtrasConfirmed ExtrasOrderStatus = "confirmed"
	ExtrasPaid      ExtrasOrderStatus = "paid"
)

// LeadSourceDocumentImport tags couples created by the importer.
const LeadSourceDocumentImport = "document import"
