package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/retail-ledger/internal/domain"
	"github.com/jhoicas/retail-ledger/internal/domain/entity"
	"github.com/jhoicas/retail-ledger/internal/domain/repository"
)

// warehouseOf resuelve la bodega y verifica que pertenezca a la empresa del usuario.
func warehouseOf(ctx context.Context, r repository.Repos, companyID, id string) (*entity.Warehouse, error) {
	wh, err := r.Warehouses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if wh == nil {
		return nil, fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
	}
	if wh.CompanyID != companyID {
		return nil, fmt.Errorf("%w: la bodega %s es de otra empresa", domain.ErrForbidden, id)
	}
	return wh, nil
}

// activeProduct exige un producto activo, no eliminado y de la misma empresa.
func activeProduct(ctx context.Context, r repository.Repos, companyID, id string) (*entity.Product, error) {
	p, err := r.Products.GetActive(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: producto %s inexistente o inactivo", domain.ErrNotFound, id)
	}
	if p.CompanyID != companyID {
		return nil, fmt.Errorf("%w: el producto %s es de otra empresa", domain.ErrForbidden, id)
	}
	return p, nil
}
