package domain

// Item is a single piece of data submitted for digesting. The service
// treats the payload as opaque; only its bytes matter.
type Item struct {
	Data string `json:"data"`
}

func NewItem(data string) Item {
	return Item{Data: data}
}

// HashInput yields the bytes the reducer fingerprints.
func (i Item) HashInput() []byte {
	return []byte(i.Data)
}

// ItemsFromStrings wraps raw payloads in order.
func ItemsFromStrings(data []string) []Item {
	items := make([]Item, len(data))
	for i, d := range data {
		items[i] = NewItem(d)
	}
	return items
}
