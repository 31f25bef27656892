package model

type Product string

const (
	ProductConcrete Product = "concrete"
	ProductAsphalt  Product = "asphalt"
)

type Intent string

const (
	IntentProud   Intent = "proud"
	IntentProcess Intent = "process"
	IntentNuance  Intent = "nuance"
)

// AttentionIntent — категория, требующая реакции менеджера (попадает на панель).
const AttentionIntent = IntentNuance

type Consent string

const (
	ConsentPublic   Consent = "public"
	ConsentInternal Consent = "internal"
)

var (
	Products = []Product{ProductConcrete, ProductAsphalt}
	Intents  = []Intent{IntentProud, IntentProcess, IntentNuance}
	Consents = []Consent{ConsentPublic, ConsentInternal}
)

var productLabels = map[Product]string{
	ProductConcrete: "Бетон",
	ProductAsphalt:  "Асфальт",
}

var intentLabels = map[Intent]string{
	IntentProud:   "Горжусь результатом!",
	IntentProcess: "Рабочий процесс",
	IntentNuance:  "Есть нюанс...",
}

var consentLabels = map[Consent]string{
	ConsentPublic:   "Да, разрешаю",
	ConsentInternal: "Только для служебного использования",
}

func (p Product) Label() string { return labelOr(productLabels, p) }
func (i Intent) Label() string  { return labelOr(intentLabels, i) }
func (c Consent) Label() string { return labelOr(consentLabels, c) }

func (p Product) Valid() bool {
	_, ok := productLabels[p]
	return ok
}

func (i Intent) Valid() bool {
	_, ok := intentLabels[i]
	return ok
}

func (c Consent) Valid() bool {
	_, ok := consentLabels[c]
	return ok
}

// ProductByLabel возвращает код по подписи кнопки.
func ProductByLabel(label string) (Product, bool) { return byLabel(productLabels, label) }
func IntentByLabel(label string) (Intent, bool)   { return byLabel(intentLabels, label) }
func ConsentByLabel(label string) (Consent, bool) { return byLabel(consentLabels, label) }

func ProductLabels() []string { return labels(Products) }
func IntentLabels() []string  { return labels(Intents) }
func ConsentLabels() []string { return labels(Consents) }

type labeled interface {
	~string
	Label() string
}

func labels[T labeled](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.Label()
	}
	return out
}

func labelOr[T ~string](m map[T]string, v T) string {
	if l, ok := m[v]; ok {
		return l
	}
	return string(v)
}

func byLabel[T ~string](m map[T]string, label string) (T, bool) {
	for k, l := range m {
		if l == label {
			return k, true
		}
	}
	var zero T
	return zero, false
}
