package repository

// Factory describes access to different domain repositories.
type Factory interface {
	Users() UserRepository
	Orders() OrderRepository
	Products() ProductRepository
	Carts() CartRepository
	Sessions() SessionRepository
	Events() EventRepository
	LandingEvents() LandingEventRepository
	TrafficFlags() TrafficFlagRepository
}
