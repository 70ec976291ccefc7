package impl

import (
	"io"
	"log/slog"

	mockRepo "reviewhub/internal/mocks/repository"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newStubTx wires a pass-through transaction manager around the given
// repository stubs.
func newStubTx(factory *mockRepo.StubRepositoryFactory) *mockRepo.StubTransactionManager {
	return &mockRepo.StubTransactionManager{Factory: factory}
}
