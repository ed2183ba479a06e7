// Package testutil provides shared test doubles and fixtures for the
// interview server packages.
//
// It contains three groups of helpers:
//
//   - Mock services (mock_services.go): testify mocks of the question and
//     transcription services used by the HTTP handlers.
//   - Mock provider (mock_provider.go): a scripted transcription provider
//     that records which files it was handed and whether they existed.
//   - Fixtures (fixtures.go): prompt documents and public directory
//     layouts written into a test's temp dir.
//
// # Usage
//
//	svc := testutil.NewMockTranscriptionService(t)
//	svc.On("Transcribe", mock.Anything, mock.Anything).Return("hello", nil)
//
//	p := testutil.NewMockProvider().WithResponse("  hello  ")
//	factory := provider.FactoryFunc(func(context.Context) (provider.TranscriptionProvider, error) {
//		return p, nil
//	})
package testutil
