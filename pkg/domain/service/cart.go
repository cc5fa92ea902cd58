package service

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/akaBaytar/buyzio-ecommerce/pkg/domain/model"
)

var ErrInvalidQuantity = errors.New("quantity must be a positive number")

type Event interface {
	Type() string
}

type EventDispatcher interface {
	Dispatch(event Event) error
}

type CartService interface {
	GetCart(identity model.Identity) (*model.Cart, error)
	AddItem(identity model.Identity, productID uuid.UUID, qtyDelta int) (*model.Cart, error)
	RemoveItem(identity model.Identity, productID uuid.UUID) (*model.Cart, error)
	// TransferCart re-owns an anonymous cart on sign-in. When the user
	// already has a cart of their own, the anonymous one is deleted.
	TransferCart(sessionCartID string, userID uuid.UUID) error
}

func NewCartService(carts model.CartRepository, products model.ProductRepository, policy model.PricingPolicy, dispatcher EventDispatcher) CartService {
	return &cartService{carts: carts, products: products, policy: policy, dispatcher: dispatcher}
}

type cartService struct {
	carts      model.CartRepository
	products   model.ProductRepository
	policy     model.PricingPolicy
	dispatcher EventDispatcher
}

func (s *cartService) GetCart(identity model.Identity) (*model.Cart, error) {
	return s.carts.FindByIdentity(identity)
}

func (s *cartService) AddItem(identity model.Identity, productID uuid.UUID, qtyDelta int) (*model.Cart, error) {
	if qtyDelta < 1 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.products.Find(productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.carts.FindByIdentity(identity)
	if errors.Is(err, model.ErrCartNotFound) {
		return s.createCart(identity, product, qtyDelta)
	}
	if err != nil {
		return nil, err
	}

	itemIndex := -1
	for i, item := range cart.Items {
		if item.ProductID == productID {
			itemIndex = i
			break
		}
	}

	if itemIndex >= 0 {
		// Soft reservation check only. The authoritative decrement
		// happens at payment confirmation.
		if product.Stock < cart.Items[itemIndex].Qty+qtyDelta {
			return nil, model.ErrInsufficientStock
		}
		cart.Items[itemIndex].Qty += qtyDelta
	} else {
		if product.Stock < qtyDelta {
			return nil, model.ErrInsufficientStock
		}
		cart.Items = append(cart.Items, newCartItem(product, qtyDelta))
	}

	if err := s.updateCart(cart); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.CartItemAdded{CartID: cart.ID, ProductID: productID, Qty: qtyDelta})
	return cart, nil
}

func (s *cartService) RemoveItem(identity model.Identity, productID uuid.UUID) (*model.Cart, error) {
	cart, err := s.carts.FindByIdentity(identity)
	if err != nil {
		return nil, err
	}

	itemIndex := -1
	for i, item := range cart.Items {
		if item.ProductID == productID {
			itemIndex = i
			break
		}
	}
	if itemIndex == -1 {
		return nil, model.ErrCartItemNotFound
	}

	if cart.Items[itemIndex].Qty == 1 {
		cart.Items = append(cart.Items[:itemIndex], cart.Items[itemIndex+1:]...)
	} else {
		cart.Items[itemIndex].Qty--
	}

	if err := s.updateCart(cart); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.CartItemRemoved{CartID: cart.ID, ProductID: productID})
	return cart, nil
}

func (s *cartService) TransferCart(sessionCartID string, userID uuid.UUID) error {
	anonymous := model.Identity{SessionCartID: sessionCartID}

	anonymousCart, err := s.carts.FindByIdentity(anonymous)
	if errors.Is(err, model.ErrCartNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.carts.FindByIdentity(model.Identity{UserID: userID})
	if err == nil {
		// The authenticated cart wins; drop the anonymous one.
		return s.carts.Delete(anonymousCart.ID)
	}
	if !errors.Is(err, model.ErrCartNotFound) {
		return err
	}

	anonymousCart.UserID = userID
	if err := s.updateCart(anonymousCart); err != nil {
		return err
	}

	_ = s.dispatcher.Dispatch(model.CartTransferred{CartID: anonymousCart.ID, UserID: userID})
	return nil
}

func (s *cartService) createCart(identity model.Identity, product *model.Product, qty int) (*model.Cart, error) {
	if product.Stock < qty {
		return nil, model.ErrInsufficientStock
	}

	cartID, err := s.carts.NextID()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	items := []model.CartItem{newCartItem(product, qty)}
	cart := &model.Cart{
		ID:            cartID,
		UserID:        identity.UserID,
		SessionCartID: identity.SessionCartID,
		Items:         items,
		Totals:        s.policy.ComputeTotals(items),
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.carts.Create(cart); err != nil {
		return nil, err
	}

	_ = s.dispatcher.Dispatch(model.CartItemAdded{CartID: cartID, ProductID: product.ID, Qty: qty})
	return cart, nil
}

func newCartItem(product *model.Product, qty int) model.CartItem {
	image := ""
	if len(product.Images) > 0 {
		image = product.Images[0]
	}
	return model.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		Slug:      product.Slug,
		Image:     image,
		Price:     product.Price,
		Qty:       qty,
	}
}

// updateCart recomputes totals and bumps the optimistic-lock version, so no
// write path can persist items without consistent totals.
func (s *cartService) updateCart(cart *model.Cart) error {
	cart.Totals = s.policy.ComputeTotals(cart.Items)
	cart.Version++
	cart.UpdatedAt = time.Now().UTC()
	return s.carts.Update(cart)
}
