package serviceiface

// Service is one independently started unit of the application, wired
// and sequenced by the app manager.
type Service interface {
	Name() string
	Start() error
	Stop() error
}
