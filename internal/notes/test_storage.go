package notes

// testStorage keeps the serialized collection in memory; used in tests
// and handy for injecting corrupt state
type testStorage struct {
	data []byte
}

func newTestStorage() *testStorage {
	return &testStorage{}
}

func (ts *testStorage) Read() ([]byte, error) {
	if ts.data == nil {
		return nil, errNoStoredNotes
	}
	return ts.data, nil
}

func (ts *testStorage) Write(data []byte) error {
	ts.data = data
	return nil
}
