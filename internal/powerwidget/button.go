package powerwidget

// Button is the capability contract every widget button implements.
type Button interface {
	// Identification
	ID() string

	// Lifecycle
	Load(view View) error
	Unload()

	// UpdateState refreshes the view from the button's current state.
	UpdateState() error

	// Events. Buttons receive every dispatched event and ignore the ones
	// they did not subscribe to.
	HandleBroadcast(action string, payload map[string]string)
	HandleSettingChange(key string)

	// Subscriptions
	ObservedKeys() []string
	BroadcastActions() []string

	// Interaction
	Toggle()
	LongClick()
}

// Factory creates buttons for the ids it recognizes.
type Factory interface {
	IDs() []string
	New(id string) (Button, error)
}
