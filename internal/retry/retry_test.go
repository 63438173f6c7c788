package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

// testConfig trả về config với backoff rất nhỏ để test không phải chờ
func testConfig() *Config {
	return &Config{
		MaxAttempts:       3,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        time.Second,
		BackoffMultiplier: 2.0,
	}
}

func TestDo_ThanhCongNgayLanDau(t *testing.T) {
	attempts := 0
	result, err := Do(context.Background(), testConfig(), nil, "test", nil, func(ctx context.Context) (string, error) {
		attempts++
		return "ok", nil
	})

	if err != nil {
		t.Fatalf("Không mong đợi lỗi, nhận được: %v", err)
	}
	if result != "ok" {
		t.Errorf("Kết quả không đúng: %s", result)
	}
	if attempts != 1 {
		t.Errorf("Mong đợi 1 lần thử, nhận được %d", attempts)
	}
}

func TestDo_HetSoLanThu(t *testing.T) {
	attempts := 0
	transientErr := errors.New("rate limited")

	_, err := Do(context.Background(), testConfig(), nil, "test", nil, func(ctx context.Context) (string, error) {
		attempts++
		return "", transientErr
	})

	if err == nil {
		t.Fatal("Mong đợi lỗi khi hết số lần thử")
	}
	// Đúng 3 lần thử, không hơn
	if attempts != 3 {
		t.Errorf("Mong đợi đúng 3 lần thử, nhận được %d", attempts)
	}
	// Lỗi cuối cùng phải truy ra được qua errors.Is
	if !errors.Is(err, transientErr) {
		t.Errorf("Lỗi trả về phải wrap lỗi cuối cùng, nhận được: %v", err)
	}
}

func TestDo_LoiKhongRetryableTraVeNgay(t *testing.T) {
	attempts := 0
	permanentErr := errors.New("bad request")

	_, err := Do(context.Background(), testConfig(), nil, "test",
		func(err error) bool { return false },
		func(ctx context.Context) (string, error) {
			attempts++
			return "", permanentErr
		})

	if !errors.Is(err, permanentErr) {
		t.Errorf("Mong đợi lỗi gốc được trả về, nhận được: %v", err)
	}
	if attempts != 1 {
		t.Errorf("Lỗi không retryable phải trả về sau 1 lần thử, nhận được %d", attempts)
	}
}

func TestDo_ThanhCongSauKhiRetry(t *testing.T) {
	attempts := 0
	_, err := Do(context.Background(), testConfig(), nil, "test", nil, func(ctx context.Context) (int, error) {
		attempts++
		if attempts < 3 {
			return 0, errors.New("transient")
		}
		return 42, nil
	})

	if err != nil {
		t.Fatalf("Không mong đợi lỗi sau khi retry thành công: %v", err)
	}
	if attempts != 3 {
		t.Errorf("Mong đợi 3 lần thử, nhận được %d", attempts)
	}
}

func TestDo_ContextBiHuy(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Do(ctx, testConfig(), nil, "test", nil, func(ctx context.Context) (string, error) {
		return "", errors.New("should not matter")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Mong đợi context.Canceled, nhận được: %v", err)
	}
}

func TestCalculateBackoff_TangTheoCapSoNhan(t *testing.T) {
	cfg := &Config{
		InitialBackoff:    time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 2.0,
	}

	// Chuỗi backoff chuẩn cho vendor call: 1s rồi 2s
	if got := calculateBackoff(0, cfg); got != time.Second {
		t.Errorf("Backoff lần 1 phải là 1s, nhận được %v", got)
	}
	if got := calculateBackoff(1, cfg); got != 2*time.Second {
		t.Errorf("Backoff lần 2 phải là 2s, nhận được %v", got)
	}
}

func TestCalculateBackoff_KhongVuotTran(t *testing.T) {
	cfg := &Config{
		InitialBackoff:    time.Second,
		MaxBackoff:        3 * time.Second,
		BackoffMultiplier: 2.0,
	}

	if got := calculateBackoff(5, cfg); got != 3*time.Second {
		t.Errorf("Backoff phải bị chặn ở MaxBackoff, nhận được %v", got)
	}
}
