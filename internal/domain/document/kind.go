package document

// Family groups kinds that share a lifecycle state machine.
type Family string

const (
	FamilyTrade   Family = "trade"
	FamilyQuality Family = "quality"
	FamilyBatch   Family = "batch"
)

// InitialStatus returns the status a new document of this family starts in.
func (f Family) InitialStatus() Status {
	if f == FamilyQuality {
		return StatusPending
	}
	return StatusDraft
}

// StockDirection describes the effect a completed document has on stock.
type StockDirection int

const (
	// DirectionNone leaves stock untouched (transfers, quality checks)
	DirectionNone StockDirection = iota
	// DirectionConsume decreases availability
	DirectionConsume
	// DirectionAdd increases availability
	DirectionAdd
)

// Kind identifies a concrete document type. All kind-specific behavior
// (stock direction, required header fields, numbering) lives in the spec
// table below; validators and the lifecycle engine are parameterized by it
// rather than switching on the kind directly.
type Kind string

const (
	KindPurchase             Kind = "PURCHASE"
	KindPurchaseReturn       Kind = "PURCHASE_RETURN"
	KindGlassOnly            Kind = "GLASS_ONLY"
	KindGlassWithAccessories Kind = "GLASS_WITH_ACCESSORIES"
	KindDispatchReturn       Kind = "DISPATCH_RETURN"
	KindDeduction            Kind = "DEDUCTION"
	KindAddition             Kind = "ADDITION"
	KindTransfer             Kind = "TRANSFER"
	KindQualityCheck         Kind = "QUALITY_CHECK"
)

// Spec is the static configuration of a kind.
type Spec struct {
	Family    Family
	Direction StockDirection

	// RequiresAccessory marks composite dispatches whose lines must
	// reference a secondary accessory unit
	RequiresAccessory bool

	// CarriesPrice marks kinds whose lines have a monetary amount
	CarriesPrice bool

	// ChecksAvailability makes line validation enforce quantity against
	// the ledger. True for every consuming kind and for transfers, which
	// relocate stock without changing the net ledger.
	ChecksAvailability bool

	// RequiredHeader lists header fields that must be non-empty
	RequiredHeader []string

	// NumberPrefix for generated document numbers
	NumberPrefix string

	// ReversalKind is the kind of the compensating document, empty when
	// the kind cannot be reversed
	ReversalKind Kind
}

var kindSpecs = map[Kind]Spec{
	KindPurchase: {
		Family:         FamilyTrade,
		Direction:      DirectionAdd,
		CarriesPrice:   true,
		RequiredHeader: []string{"supplierName"},
		NumberPrefix:   "PI",
		ReversalKind:   KindPurchaseReturn,
	},
	KindPurchaseReturn: {
		Family:             FamilyTrade,
		Direction:          DirectionConsume,
		ChecksAvailability: true,
		CarriesPrice:       true,
		RequiredHeader:     []string{"supplierName"},
		NumberPrefix:       "PR",
	},
	KindGlassOnly: {
		Family:             FamilyTrade,
		Direction:          DirectionConsume,
		ChecksAvailability: true,
		CarriesPrice:       true,
		RequiredHeader:     []string{"recipient"},
		NumberPrefix:       "FD",
		ReversalKind:       KindDispatchReturn,
	},
	KindGlassWithAccessories: {
		Family:             FamilyTrade,
		Direction:          DirectionConsume,
		ChecksAvailability: true,
		RequiresAccessory:  true,
		CarriesPrice:       true,
		RequiredHeader:     []string{"recipient"},
		NumberPrefix:       "FD",
		ReversalKind:       KindDispatchReturn,
	},
	KindDispatchReturn: {
		Family:         FamilyTrade,
		Direction:      DirectionAdd,
		CarriesPrice:   true,
		RequiredHeader: []string{"recipient"},
		NumberPrefix:   "FR",
	},
	KindDeduction: {
		Family:             FamilyBatch,
		Direction:          DirectionConsume,
		ChecksAvailability: true,
		RequiredHeader:     []string{"reasonCode"},
		NumberPrefix:       "BO",
	},
	KindAddition: {
		Family:         FamilyBatch,
		Direction:      DirectionAdd,
		RequiredHeader: []string{"reasonCode"},
		NumberPrefix:   "BO",
	},
	KindTransfer: {
		Family:             FamilyBatch,
		Direction:          DirectionNone,
		ChecksAvailability: true,
		RequiredHeader:     []string{"reasonCode", "targetLocation"},
		NumberPrefix:       "BO",
	},
	KindQualityCheck: {
		Family:       FamilyQuality,
		Direction:    DirectionNone,
		NumberPrefix: "QC",
	},
}

// Spec returns the kind's static configuration. Unknown kinds get a zero
// spec; callers should check Valid first.
func (k Kind) Spec() Spec {
	return kindSpecs[k]
}

// Valid reports whether the kind is registered.
func (k Kind) Valid() bool {
	_, ok := kindSpecs[k]
	return ok
}

// Kinds returns all registered kinds.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindSpecs))
	for k := range kindSpecs {
		out = append(out, k)
	}
	return out
}
