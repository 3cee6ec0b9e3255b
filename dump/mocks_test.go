package dump

// MockFileSystem implements FileSystem for testing
type MockFileSystem struct {
	Files      map[string][]byte
	WriteError error
	MkdirError error
	WriteCalls []WriteCall
	MkdirCalls []string
}

type WriteCall struct {
	Path string
	Data []byte
	Perm int
}

func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		Files: make(map[string][]byte),
	}
}

func (m *MockFileSystem) WriteFile(path string, data []byte, perm int) error {
	m.WriteCalls = append(m.WriteCalls, WriteCall{Path: path, Data: data, Perm: perm})
	if m.WriteError != nil {
		return m.WriteError
	}
	m.Files[path] = data
	return nil
}

func (m *MockFileSystem) Exists(path string) bool {
	_, exists := m.Files[path]
	return exists
}

func (m *MockFileSystem) MkdirAll(path string, perm int) error {
	m.MkdirCalls = append(m.MkdirCalls, path)
	return m.MkdirError
}
