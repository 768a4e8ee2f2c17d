package hydra

// Observer receives dispatch and assertion events, typically for metrics.
type Observer interface {
	HeadMatched(plugin, head string)
	NotFound(url string)
	AssertionRecorded(test TestRef, passed bool)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) HeadMatched(string, string)      {}
func (NopObserver) NotFound(string)                 {}
func (NopObserver) AssertionRecorded(TestRef, bool) {}
