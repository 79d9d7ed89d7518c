package xfa

// Namespace identifies the XFA packet a node belongs to.
type Namespace int

const (
	NSUnknown Namespace = iota
	NSXDP
	NSTemplate
	NSDatasets
	NSData
	NSXHTML
)

// Namespace URIs recognised by the parser. Template URIs carry a version
// suffix, so they are matched by prefix.
const (
	URIXDP      = "http://ns.adobe.com/xdp/"
	URITemplate = "http://www.xfa.org/schema/xfa-template/"
	URIDatasets = "http://www.xfa.org/schema/xfa-data/1.0/"
	URIXHTML    = "http://www.w3.org/1999/xhtml"
)

// Kind is the closed set of node variants the engine dispatches on.
type Kind int

const (
	KindUnknown Kind = iota
	KindXDP
	KindTemplate
	KindSubform
	KindSubformSet
	KindExclGroup
	KindField
	KindDraw
	KindArea
	KindPageSet
	KindPageArea
	KindContentArea
	KindMedium
	KindOccur
	KindBind
	KindBreak
	KindBreakBefore
	KindBreakAfter
	KindOverflow
	KindKeep
	KindSetProperty
	KindBindItems
	KindItems
	KindValue
	KindText
	KindInteger
	KindDecimal
	KindFloat
	KindBoolean
	KindDate
	KindTime
	KindDateTime
	KindExData
	KindImage
	KindUI
	KindTextEdit
	KindNumericEdit
	KindDateTimeEdit
	KindPasswordEdit
	KindChoiceList
	KindCheckButton
	KindButton
	KindImageEdit
	KindSignature
	KindCaption
	KindFont
	KindPara
	KindMargin
	KindBorder
	KindEvent
	KindScript
	KindProto
	KindVariables
	KindDatasets
	KindData
	KindAttribute
)

var kindNames = map[Kind]string{
	KindXDP:          "xdp",
	KindTemplate:     "template",
	KindSubform:      "subform",
	KindSubformSet:   "subformSet",
	KindExclGroup:    "exclGroup",
	KindField:        "field",
	KindDraw:         "draw",
	KindArea:         "area",
	KindPageSet:      "pageSet",
	KindPageArea:     "pageArea",
	KindContentArea:  "contentArea",
	KindMedium:       "medium",
	KindOccur:        "occur",
	KindBind:         "bind",
	KindBreak:        "break",
	KindBreakBefore:  "breakBefore",
	KindBreakAfter:   "breakAfter",
	KindOverflow:     "overflow",
	KindKeep:         "keep",
	KindSetProperty:  "setProperty",
	KindBindItems:    "bindItems",
	KindItems:        "items",
	KindValue:        "value",
	KindText:         "text",
	KindInteger:      "integer",
	KindDecimal:      "decimal",
	KindFloat:        "float",
	KindBoolean:      "boolean",
	KindDate:         "date",
	KindTime:         "time",
	KindDateTime:     "dateTime",
	KindExData:       "exData",
	KindImage:        "image",
	KindUI:           "ui",
	KindTextEdit:     "textEdit",
	KindNumericEdit:  "numericEdit",
	KindDateTimeEdit: "dateTimeEdit",
	KindPasswordEdit: "passwordEdit",
	KindChoiceList:   "choiceList",
	KindCheckButton:  "checkButton",
	KindButton:       "button",
	KindImageEdit:    "imageEdit",
	KindSignature:    "signature",
	KindCaption:      "caption",
	KindFont:         "font",
	KindPara:         "para",
	KindMargin:       "margin",
	KindBorder:       "border",
	KindEvent:        "event",
	KindScript:       "script",
	KindProto:        "proto",
	KindVariables:    "variables",
	KindDatasets:     "datasets",
	KindData:         "data",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}
	return m
}()

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	if k == KindAttribute {
		return "#attribute"
	}
	return "unknown"
}

// TemplateKind returns the template kind for an element local name.
func TemplateKind(tag string) Kind {
	if k, ok := kindByName[tag]; ok && k != KindData && k != KindDatasets && k != KindXDP {
		return k
	}
	return KindUnknown
}

// Unbounded is the maximum used for repeatable collections.
const Unbounded = -1

// propertyMax lists child kinds that behave as single-valued (or size
// bounded) properties of their parent. Anything absent is an unbounded
// repeatable collection.
var propertyMax = map[Kind]int{
	KindOccur:        1,
	KindBind:         1,
	KindValue:        1,
	KindFont:         1,
	KindPara:         1,
	KindMargin:       1,
	KindBorder:       1,
	KindUI:           1,
	KindCaption:      1,
	KindMedium:       1,
	KindKeep:         1,
	KindOverflow:     1,
	KindBreak:        1,
	KindScript:       1,
	KindItems:        2,
	KindText:         1,
	KindInteger:      1,
	KindDecimal:      1,
	KindFloat:        1,
	KindBoolean:      1,
	KindDate:         1,
	KindTime:         1,
	KindDateTime:     1,
	KindExData:       1,
	KindImage:        1,
	KindTextEdit:     1,
	KindNumericEdit:  1,
	KindDateTimeEdit: 1,
	KindPasswordEdit: 1,
	KindChoiceList:   1,
	KindCheckButton:  1,
	KindButton:       1,
	KindImageEdit:    1,
	KindSignature:    1,
}

// ChildMax reports how many children of kind child a parent of kind parent
// may own: 1 for object properties, a small bound for bounded
// collections and Unbounded otherwise. Text children of items lists are
// repeatable.
func ChildMax(parent, child Kind) int {
	if parent == KindItems {
		return Unbounded
	}
	if m, ok := propertyMax[child]; ok {
		return m
	}
	return Unbounded
}

// IsProperty reports whether child is a single-valued property of parent.
func IsProperty(parent, child Kind) bool {
	return ChildMax(parent, child) == 1
}

// valueKinds are the content nodes a value element may hold.
var valueKinds = map[Kind]bool{
	KindText:     true,
	KindInteger:  true,
	KindDecimal:  true,
	KindFloat:    true,
	KindBoolean:  true,
	KindDate:     true,
	KindTime:     true,
	KindDateTime: true,
	KindExData:   true,
	KindImage:    true,
}

// IsValueContent reports whether k is one of the typed content kinds of a
// value node.
func IsValueContent(k Kind) bool { return valueKinds[k] }

// layoutKinds are the children a container lays out.
var layoutKinds = map[Kind]bool{
	KindArea:       true,
	KindDraw:       true,
	KindExclGroup:  true,
	KindField:      true,
	KindSubform:    true,
	KindSubformSet: true,
}

// IsLayoutChild reports whether k takes part in a container's flow.
func IsLayoutChild(k Kind) bool { return layoutKinds[k] }
