package mocks

//go:generate mockgen -destination=./mock_order_router.go -package=mocks github.com/rxtech-lab/ladder-trading/internal/execution OrderRouter
