package registry

import (
	"errors"
	"fmt"
	"testing"

	"agentic_voice/internal/common"
)

func TestRegistry_RegisterVaGet(t *testing.T) {
	r := NewRegistry[string]()

	isNew, err := r.Register("key", "value")
	if err != nil {
		t.Fatalf("Không mong đợi lỗi khi register: %v", err)
	}
	if !isNew {
		t.Error("Register lần đầu phải trả về isNew=true")
	}

	item, exists := r.Get("key")
	if !exists {
		t.Fatal("Item đã register phải tồn tại")
	}
	if item != "value" {
		t.Errorf("Giá trị lấy ra không đúng: %s", item)
	}
}

func TestRegistry_RegisterGhiDe(t *testing.T) {
	r := NewRegistry[int]()

	r.Register("key", 1)
	isNew, err := r.Register("key", 2)
	if err != nil {
		t.Fatalf("Không mong đợi lỗi khi ghi đè: %v", err)
	}
	if isNew {
		t.Error("Register ghi đè phải trả về isNew=false")
	}

	item, _ := r.Get("key")
	if item != 2 {
		t.Errorf("Giá trị sau khi ghi đè phải là 2, nhận được %d", item)
	}
}

func TestRegistry_Register_TenRong(t *testing.T) {
	r := NewRegistry[string]()

	_, err := r.Register("", "value")
	if !errors.Is(err, common.ErrRequiredField) {
		t.Errorf("Tên rỗng phải trả về ErrRequiredField, nhận được: %v", err)
	}
}

func TestRegistry_Get_KhongTonTai(t *testing.T) {
	r := NewRegistry[string]()

	_, exists := r.Get("khong-ton-tai")
	if exists {
		t.Error("Item chưa register không được tồn tại")
	}
}

func TestRegistry_GetOrCreate_ChiTaoMotLan(t *testing.T) {
	r := NewRegistry[int]()
	created := 0

	creator := func() (int, error) {
		created++
		return 42, nil
	}

	first, err := r.GetOrCreate("key", creator)
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	second, err := r.GetOrCreate("key", creator)
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}

	if first != 42 || second != 42 {
		t.Errorf("Giá trị không đúng: %d, %d", first, second)
	}
	if created != 1 {
		t.Errorf("Creator chỉ được gọi 1 lần, nhận được %d", created)
	}
}

func TestRegistry_GetOrCreate_CreatorLoi(t *testing.T) {
	r := NewRegistry[string]()
	creatorErr := errors.New("khởi tạo thất bại")

	_, err := r.GetOrCreate("key", func() (string, error) {
		return "", creatorErr
	})
	if !errors.Is(err, creatorErr) {
		t.Errorf("Lỗi từ creator phải được wrap, nhận được: %v", err)
	}

	if _, exists := r.Get("key"); exists {
		t.Error("Creator lỗi thì không được lưu item vào registry")
	}
}

func TestRegistry_Clear_GoiCleanup(t *testing.T) {
	r := NewRegistry[string]()
	r.Register("key", "value")

	cleaned := ""
	deleted, err := r.Clear("key", func(item string) error {
		cleaned = item
		return nil
	})
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if !deleted {
		t.Error("Clear item tồn tại phải trả về deleted=true")
	}
	if cleaned != "value" {
		t.Errorf("Cleanup phải nhận được item, nhận được %q", cleaned)
	}

	if _, exists := r.Get("key"); exists {
		t.Error("Item đã clear không được tồn tại")
	}
}

func TestRegistry_Clear_CleanupLoiThiGiuItem(t *testing.T) {
	r := NewRegistry[string]()
	r.Register("key", "value")

	deleted, err := r.Clear("key", func(item string) error {
		return fmt.Errorf("đang bận")
	})
	if err == nil {
		t.Fatal("Cleanup lỗi thì Clear phải trả về lỗi")
	}
	if deleted {
		t.Error("Cleanup lỗi thì không được xóa item")
	}

	if _, exists := r.Get("key"); !exists {
		t.Error("Cleanup lỗi thì item phải còn trong registry")
	}
}

func TestRegistry_ClearAll(t *testing.T) {
	r := NewRegistry[int]()
	r.Register("a", 1)
	r.Register("b", 2)

	count, err := r.ClearAll(nil)
	if err != nil {
		t.Fatalf("Không mong đợi lỗi: %v", err)
	}
	if count != 2 {
		t.Errorf("ClearAll phải trả về số item đã xóa, nhận được %d", count)
	}

	if _, exists := r.Get("a"); exists {
		t.Error("Registry phải rỗng sau ClearAll")
	}
}
