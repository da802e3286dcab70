// Package mocks holds test doubles shared by the api and service tests.
//
// Most doubles follow one shape: an optional function field per method and
// plain default return values used when the function is nil. Tests set only
// what they assert on:
//
//	tasks := &mocks.MockTaskService{Task: sampleTask()}
//	tokens := &mocks.MockTokenService{Err: errSigning}
//
// TestifyMockUserStore is the exception. It embeds testify's mock.Mock so a
// test can script a call sequence and check it with AssertExpectations.
package mocks
