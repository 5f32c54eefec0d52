package store

// Action contains the fields of a submitted action saved to DB. Address is the connected wallet, Function the entry
// function called and Hash the resulting transaction, empty if the action failed.
type Action struct {
	ID       []byte `json:"id"`
	Address  string `json:"address"`
	Function string `json:"function"`
	Hash     string `json:"hash,omitempty"`
	OK       bool   `json:"ok"`
	Message  string `json:"message,omitempty"`
	TS       int64  `json:"ts"` // unix seconds
}
