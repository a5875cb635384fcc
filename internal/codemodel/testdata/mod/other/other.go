package other

// Other lives outside the app root.
func Other() {}
