package test

import (
	"strings"

	"go.uber.org/mock/gomock"

	"octodon/test/mocks"
)

func setupDummyLogger(mockLogger *mocks.MockILogger) {
	mockLogger.EXPECT().Error(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Errorf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warnf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Infof(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debugf(gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Printf(gomock.Any(), gomock.Any()).AnyTimes()
}

func setupDummyMetrics(ctrl *gomock.Controller, mockMetrics *mocks.MockIMetrics) {
	observer := mocks.NewMockIRequestObserver(ctrl)
	observer.EXPECT().Finish().AnyTimes()
	mockMetrics.EXPECT().StartApiRequestIn(gomock.Any()).Return(observer).AnyTimes()
	mockMetrics.EXPECT().StartProviderRequestOut(gomock.Any()).Return(observer).AnyTimes()
	mockMetrics.EXPECT().SnapshotLoaded().AnyTimes()
	mockMetrics.EXPECT().SnapshotPostCount(gomock.Any()).AnyTimes()
	mockMetrics.EXPECT().StatusCreated().AnyTimes()
	mockMetrics.EXPECT().ServiceStarted().AnyTimes()
}

func checkStartsWith(prefix string) func(x any) bool {
	res := func(x any) bool {
		str, ok := x.(string)
		if !ok {
			return false
		}
		return strings.HasPrefix(str, prefix)
	}
	return res
}

func checkBytesContain(sub string) func(x any) bool {
	res := func(x any) bool {
		data, ok := x.([]byte)
		if !ok {
			return false
		}
		return strings.Contains(string(data), sub)
	}
	return res
}
