package domain

// Address is a shipping address with a server-assigned id, opaque to the client.
type Address struct {
	ID   string `json:"_id"`
	Text string `json:"address"`
}

// AddressBook holds the user's addresses in server order plus the id of the
// address selected for checkout. SelectedID, when non-empty, always references
// an entry in Entries.
type AddressBook struct {
	Entries    []Address
	SelectedID string
}

// Select marks the address with the given id as the checkout address.
// Selecting an id not present in the book is ignored and reported false.
func (b *AddressBook) Select(id string) bool {
	for i := range b.Entries {
		if b.Entries[i].ID == id {
			b.SelectedID = id
			return true
		}
	}
	return false
}

// Selected returns the selected address, if any.
func (b *AddressBook) Selected() (Address, bool) {
	for i := range b.Entries {
		if b.Entries[i].ID == b.SelectedID && b.SelectedID != "" {
			return b.Entries[i], true
		}
	}
	return Address{}, false
}

// Replace swaps in a fresh server-returned address list. The selection is
// cleared when the selected entry no longer exists, keeping the
// SelectedID-references-Entries invariant after deletes.
func (b *AddressBook) Replace(entries []Address) {
	b.Entries = entries
	if b.SelectedID == "" {
		return
	}
	for i := range entries {
		if entries[i].ID == b.SelectedID {
			return
		}
	}
	b.SelectedID = ""
}
