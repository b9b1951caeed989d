package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"storefront/internal/domain/entity"
	"storefront/internal/domain/service"
	"storefront/pkg/errors"
)

func float(v float64) *float64 {
	return &v
}

// fakeProductRepo is an in-memory ProductRepository with hooks for
// failures and slow responses.
type fakeProductRepo struct {
	mu        sync.Mutex
	products  []*entity.Product
	variants  map[string][]entity.Variant
	nextID    int
	getCalls  int
	listCalls int

	listErr     error
	variantsErr error
	relatedErr  error
	// listHook runs before List returns; tests use it to hold a response.
	listHook func(call int)
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	return &fakeProductRepo{products: products, variants: make(map[string][]entity.Variant)}
}

func (f *fakeProductRepo) List(ctx context.Context) ([]*entity.Product, error) {
	f.mu.Lock()
	f.listCalls++
	call := f.listCalls
	hook := f.listHook
	err := f.listErr
	products := make([]*entity.Product, len(f.products))
	for i, p := range f.products {
		products[i] = p.Clone()
	}
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (f *fakeProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	for _, p := range f.products {
		if p.ID == id {
			return p.Clone(), nil
		}
	}
	return nil, errors.NotFound("Product", nil)
}

func (f *fakeProductRepo) ListVariants(ctx context.Context, productID string) ([]entity.Variant, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.variantsErr != nil {
		return nil, f.variantsErr
	}
	return append([]entity.Variant(nil), f.variants[productID]...), nil
}

func (f *fakeProductRepo) ListByCategory(ctx context.Context, category string, limit int) ([]*entity.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.relatedErr != nil {
		return nil, f.relatedErr
	}
	var out []*entity.Product
	for _, p := range f.products {
		if p.Category == category {
			out = append(out, p.Clone())
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Create(ctx context.Context, product *entity.Product) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("new-%d", f.nextID)
	created := product.Clone()
	created.ID = id
	f.products = append(f.products, created)
	return id, nil
}

func (f *fakeProductRepo) Update(ctx context.Context, id string, patch entity.ProductPatch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.products {
		if p.ID == id {
			f.products[i] = patch.Apply(p)
			return nil
		}
	}
	return errors.NotFound("Product", nil)
}

func (f *fakeProductRepo) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.products {
		if p.ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return errors.NotFound("Product", nil)
}

type fakeProber struct {
	bad map[string]bool
}

func (p fakeProber) Probe(ctx context.Context, url string) error {
	if p.bad[url] {
		return io.ErrUnexpectedEOF
	}
	return nil
}

type fakeFiles struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

var _ service.FileUploadService = (*fakeFiles)(nil)

func (f *fakeFiles) UploadFile(ctx context.Context, r io.Reader, fileType, folder string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	url := fmt.Sprintf("https://storage.googleapis.com/shop/%s/%d.jpg", folder, len(f.uploaded))
	f.uploaded = append(f.uploaded, string(data))
	return url, nil
}

func (f *fakeFiles) DeleteFile(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return nil
}

func (f *fakeFiles) OwnsURL(url string) bool {
	return strings.HasPrefix(url, "https://storage.googleapis.com/shop/")
}

func (f *fakeFiles) Close() error { return nil }

type upperOptimizer struct{}

func (upperOptimizer) Optimize(data []byte) ([]byte, string, error) {
	if len(data) == 0 {
		return nil, "", io.ErrUnexpectedEOF
	}
	return []byte(strings.ToUpper(string(data))), "image/jpeg", nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	session   []service.ViewEvent
	broadcast []service.ViewEvent
}

func (n *recordingNotifier) NotifySession(sessionID string, event service.ViewEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.session = append(n.session, event)
}

func (n *recordingNotifier) Broadcast(event service.ViewEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.broadcast = append(n.broadcast, event)
}

func (n *recordingNotifier) sessionEvents() []service.ViewEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]service.ViewEvent(nil), n.session...)
}

func (n *recordingNotifier) broadcastEvents() []service.ViewEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]service.ViewEvent(nil), n.broadcast...)
}

func catalogFixture() []*entity.Product {
	return []*entity.Product{
		{ID: "p1", Name: "Moletom Básico", Category: "moletons", Price: 149.90, OldPrice: float(189.90),
			Images: []entity.ImageRef{entity.URLImage("https://cdn.example.com/p1.jpg")},
			Colors: []entity.Color{{Name: "Preto", Hex: "#000"}, {Name: "Cinza", Images: []entity.ImageRef{entity.URLImage("https://cdn.example.com/p1-cinza.jpg")}}}},
		{ID: "p2", Name: "camiseta", Category: "camisetas", Price: 59.90},
		{ID: "p3", Name: "Ábaco Tee", Category: "camisetas", Price: 59.90, OldPrice: float(59.90)},
		{ID: "p4", Name: "Zíper Jacket", Category: "jaquetas", Price: 299.00, OldPrice: float(249.00)},
		{ID: "p5", Name: "Boné", Category: "moletons", Price: 39.90, OldPrice: float(79.90)},
	}
}
