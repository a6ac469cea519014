package schema

// Faker is implemented by types that provide their own example instance
// for format instructions, instead of generated fake data.
type Faker interface {
	Fake() any
}
