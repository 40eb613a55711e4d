// Package mocks provides centralized mock implementations for testing.
//
// Two styles are offered. The Mock* types are hand-written fakes with
// function fields and sensible defaults, suited to tests that only care
// about one or two calls. The TestifyMock* types embed testify's mock.Mock
// for tests that assert on exact call sequences and arguments.
//
// Usage:
//
//	import "github.com/phrazzld/taskflow-api/internal/mocks"
//
//	func TestSomething(t *testing.T) {
//	    jwtSvc := &mocks.MockJWTService{
//	        GenerateTokenFn: func(ctx context.Context, userID uuid.UUID) (string, error) {
//	            return "mocked-token", nil
//	        },
//	    }
//
//	    // Use the mock in your test...
//	}
package mocks
