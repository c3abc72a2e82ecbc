package types

// Conversion is an implicit conversion named Name from From to To.
// A conversion with an Owner is only eligible when the owner class is part of the
// types being converted between, as for conversions defined next to a class
type Conversion struct {
	Name     string
	Owner    string
	From, To Type
}

// ConversionTable is a ViewSearch over a fixed list of conversions
type ConversionTable struct {
	conversions []Conversion
}

func NewConversionTable(conversions ...Conversion) *ConversionTable {
	return &ConversionTable{conversions: conversions}
}

func (ct *ConversionTable) Add(conv Conversion) *ConversionTable {
	ct.conversions = append(ct.conversions, conv)
	return ct
}

// Find returns the first eligible conversion that accepts from and produces something
// compatible with to. Candidates are tried in an exploring context and leave no trace in ctx
func (ct *ConversionTable) Find(ctx *TypeCtx, from, to Type) (Conversion, bool) {
	from, to = widen(from), widenExpr(to)
	scope := NamedParts(NewViewProto(from, to))
	for _, conv := range ct.conversions {
		if conv.Owner != "" && !scope.Contains(conv.Owner) {
			continue
		}
		exploring := ctx.Exploring()
		if exploring.IsSubtype(from, conv.From) && exploring.IsSubtype(conv.To, to) {
			ctx.logger.Debug("found view", "conversion", conv.Name, "from", from.String(), "to", to.String())
			return conv, true
		}
	}
	return Conversion{}, false
}

func (ct *ConversionTable) ViewExists(ctx *TypeCtx, from, to Type) bool {
	_, ok := ct.Find(ctx, from, to)
	return ok
}
