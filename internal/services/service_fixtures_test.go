package services

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/harimoradiya/rmspos/internal/models"
	"github.com/harimoradiya/rmspos/internal/notifications"
	"github.com/harimoradiya/rmspos/internal/repositories"
)

// The engines run every mutation inside a database transaction, so the
// tests back them with a stub driver whose transactions always succeed.
// State lives in the fake repositories, which ignore the executor.

type stubDriver struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func init() {
	sql.Register("servicestub", stubDriver{})
}

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("servicestub", "")
	if err != nil {
		t.Fatalf("opening stub db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// --- recording notifier ---

type fakeNotifier struct {
	events []notifications.Event
}

func (n *fakeNotifier) Broadcast(outletID int64, event notifications.Event) {
	n.events = append(n.events, event)
}

func (n *fakeNotifier) eventsOfType(eventType string) []notifications.Event {
	var out []notifications.Event
	for _, e := range n.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// --- fake outlet repository ---

type fakeOutletRepo struct {
	chains  map[int64]*models.RestaurantChain
	outlets map[int64]*models.RestaurantOutlet
	nextID  int64
}

func newFakeOutletRepo() *fakeOutletRepo {
	return &fakeOutletRepo{
		chains:  make(map[int64]*models.RestaurantChain),
		outlets: make(map[int64]*models.RestaurantOutlet),
	}
}

func (r *fakeOutletRepo) addOutlet(outletID, chainID, ownerID int64) {
	if outletID > r.nextID {
		r.nextID = outletID
	}
	if chainID > r.nextID {
		r.nextID = chainID
	}
	if _, ok := r.chains[chainID]; !ok {
		r.chains[chainID] = &models.RestaurantChain{ID: chainID, Name: fmt.Sprintf("chain-%d", chainID), OwnerID: ownerID}
	}
	r.outlets[outletID] = &models.RestaurantOutlet{ID: outletID, ChainID: chainID, Name: fmt.Sprintf("outlet-%d", outletID), Status: "active"}
}

func (r *fakeOutletRepo) CreateChain(_ repositories.SQLExecutor, chain *models.RestaurantChain) (int64, error) {
	r.nextID++
	chain.ID = r.nextID
	copied := *chain
	r.chains[chain.ID] = &copied
	return chain.ID, nil
}

func (r *fakeOutletRepo) GetChainByID(chainID int64) (*models.RestaurantChain, error) {
	chain, ok := r.chains[chainID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *chain
	return &copied, nil
}

func (r *fakeOutletRepo) GetChainsByOwner(ownerID int64) ([]models.RestaurantChain, error) {
	var out []models.RestaurantChain
	for _, chain := range r.chains {
		if chain.OwnerID == ownerID {
			out = append(out, *chain)
		}
	}
	return out, nil
}

func (r *fakeOutletRepo) UpdateChain(_ repositories.SQLExecutor, chain *models.RestaurantChain) error {
	if _, ok := r.chains[chain.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *chain
	r.chains[chain.ID] = &copied
	return nil
}

func (r *fakeOutletRepo) DeleteChain(_ repositories.SQLExecutor, chainID int64) error {
	if _, ok := r.chains[chainID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.chains, chainID)
	return nil
}

func (r *fakeOutletRepo) CreateOutlet(_ repositories.SQLExecutor, outlet *models.RestaurantOutlet) (int64, error) {
	r.nextID++
	outlet.ID = r.nextID
	copied := *outlet
	r.outlets[outlet.ID] = &copied
	return outlet.ID, nil
}

func (r *fakeOutletRepo) GetOutletByID(outletID int64) (*models.RestaurantOutlet, error) {
	outlet, ok := r.outlets[outletID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *outlet
	return &copied, nil
}

func (r *fakeOutletRepo) GetOutletsByChain(chainID int64) ([]models.RestaurantOutlet, error) {
	var out []models.RestaurantOutlet
	for _, outlet := range r.outlets {
		if outlet.ChainID == chainID {
			out = append(out, *outlet)
		}
	}
	return out, nil
}

func (r *fakeOutletRepo) UpdateOutlet(_ repositories.SQLExecutor, outlet *models.RestaurantOutlet) error {
	if _, ok := r.outlets[outlet.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *outlet
	r.outlets[outlet.ID] = &copied
	return nil
}

func (r *fakeOutletRepo) OutletExists(outletID int64) (bool, error) {
	_, ok := r.outlets[outletID]
	return ok, nil
}

func (r *fakeOutletRepo) ListOutletIDsByOwner(ownerID int64) ([]int64, error) {
	var ids []int64
	for _, outlet := range r.outlets {
		if chain, ok := r.chains[outlet.ChainID]; ok && chain.OwnerID == ownerID {
			ids = append(ids, outlet.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// --- fake table repository ---

type fakeTableRepo struct {
	areas  map[int64]*models.Area
	tables map[int64]*models.Table
	nextID int64
}

func newFakeTableRepo() *fakeTableRepo {
	return &fakeTableRepo{
		areas:  make(map[int64]*models.Area),
		tables: make(map[int64]*models.Table),
	}
}

func (r *fakeTableRepo) addTable(tableID, areaID, outletID int64, status models.TableStatus) {
	if tableID > r.nextID {
		r.nextID = tableID
	}
	if areaID > r.nextID {
		r.nextID = areaID
	}
	if _, ok := r.areas[areaID]; !ok {
		r.areas[areaID] = &models.Area{ID: areaID, Name: fmt.Sprintf("area-%d", areaID), OutletID: outletID, IsActive: true}
	}
	r.tables[tableID] = &models.Table{ID: tableID, Name: fmt.Sprintf("T%d", tableID), Capacity: 4, Status: string(status), AreaID: areaID}
}

func (r *fakeTableRepo) tableStatus(tableID int64) string {
	return r.tables[tableID].Status
}

func (r *fakeTableRepo) CreateArea(_ repositories.SQLExecutor, area *models.Area) (int64, error) {
	r.nextID++
	area.ID = r.nextID
	copied := *area
	r.areas[area.ID] = &copied
	return area.ID, nil
}

func (r *fakeTableRepo) GetAreaByID(areaID int64) (*models.Area, error) {
	area, ok := r.areas[areaID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *area
	return &copied, nil
}

func (r *fakeTableRepo) GetAreasByOutlet(outletID int64) ([]models.Area, error) {
	var out []models.Area
	for _, area := range r.areas {
		if area.OutletID == outletID {
			out = append(out, *area)
		}
	}
	return out, nil
}

func (r *fakeTableRepo) UpdateArea(_ repositories.SQLExecutor, area *models.Area) error {
	if _, ok := r.areas[area.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *area
	r.areas[area.ID] = &copied
	return nil
}

func (r *fakeTableRepo) DeleteArea(_ repositories.SQLExecutor, areaID int64) error {
	if _, ok := r.areas[areaID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.areas, areaID)
	return nil
}

func (r *fakeTableRepo) CountTablesInArea(areaID int64) (int, error) {
	count := 0
	for _, table := range r.tables {
		if table.AreaID == areaID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTableRepo) CreateTable(_ repositories.SQLExecutor, table *models.Table) (int64, error) {
	r.nextID++
	table.ID = r.nextID
	copied := *table
	r.tables[table.ID] = &copied
	return table.ID, nil
}

func (r *fakeTableRepo) lookupTable(tableID int64) (*models.Table, int64, error) {
	table, ok := r.tables[tableID]
	if !ok {
		return nil, 0, repositories.ErrNotFound
	}
	area, ok := r.areas[table.AreaID]
	if !ok {
		return nil, 0, repositories.ErrNotFound
	}
	copied := *table
	return &copied, area.OutletID, nil
}

func (r *fakeTableRepo) GetTableByID(tableID int64) (*models.Table, int64, error) {
	return r.lookupTable(tableID)
}

func (r *fakeTableRepo) GetTableForUpdate(_ repositories.SQLExecutor, tableID int64) (*models.Table, int64, error) {
	return r.lookupTable(tableID)
}

func (r *fakeTableRepo) GetTablesByOutlet(outletID int64) ([]models.Table, error) {
	var out []models.Table
	for _, table := range r.tables {
		if area, ok := r.areas[table.AreaID]; ok && area.OutletID == outletID {
			out = append(out, *table)
		}
	}
	return out, nil
}

func (r *fakeTableRepo) UpdateTable(_ repositories.SQLExecutor, table *models.Table) error {
	if _, ok := r.tables[table.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *table
	r.tables[table.ID] = &copied
	return nil
}

func (r *fakeTableRepo) DeleteTable(_ repositories.SQLExecutor, tableID int64) error {
	if _, ok := r.tables[tableID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.tables, tableID)
	return nil
}

func (r *fakeTableRepo) UpdateTableStatus(_ repositories.SQLExecutor, tableID int64, status string, _ time.Time) error {
	table, ok := r.tables[tableID]
	if !ok {
		return repositories.ErrNotFound
	}
	table.Status = status
	return nil
}

// --- fake menu repository ---

type fakeMenuRepo struct {
	categories map[int64]*models.MenuCategory
	items      map[int64]*models.MenuItem
	nextID     int64
}

func newFakeMenuRepo() *fakeMenuRepo {
	return &fakeMenuRepo{
		categories: make(map[int64]*models.MenuCategory),
		items:      make(map[int64]*models.MenuItem),
	}
}

func (r *fakeMenuRepo) bump(ids ...int64) {
	for _, id := range ids {
		if id > r.nextID {
			r.nextID = id
		}
	}
}

func (r *fakeMenuRepo) addOutletItem(itemID, categoryID, outletID int64, price float64) {
	r.bump(itemID, categoryID)
	if _, ok := r.categories[categoryID]; !ok {
		r.categories[categoryID] = &models.MenuCategory{
			ID: categoryID, Name: fmt.Sprintf("category-%d", categoryID),
			Scope: string(models.MenuScopeOutlet), OutletID: &outletID, IsActive: true,
		}
	}
	r.items[itemID] = &models.MenuItem{
		ID: itemID, Name: fmt.Sprintf("item-%d", itemID),
		Price: price, CategoryID: categoryID, IsAvailable: true,
	}
}

func (r *fakeMenuRepo) addChainItem(itemID, categoryID, chainID int64, price float64) {
	r.bump(itemID, categoryID)
	if _, ok := r.categories[categoryID]; !ok {
		r.categories[categoryID] = &models.MenuCategory{
			ID: categoryID, Name: fmt.Sprintf("category-%d", categoryID),
			Scope: string(models.MenuScopeChain), ChainID: &chainID, IsActive: true,
		}
	}
	r.items[itemID] = &models.MenuItem{
		ID: itemID, Name: fmt.Sprintf("item-%d", itemID),
		Price: price, CategoryID: categoryID, IsAvailable: true,
	}
}

func (r *fakeMenuRepo) CreateCategory(_ repositories.SQLExecutor, category *models.MenuCategory) (int64, error) {
	r.nextID++
	category.ID = r.nextID
	copied := *category
	r.categories[category.ID] = &copied
	return category.ID, nil
}

func (r *fakeMenuRepo) GetCategoryByID(categoryID int64) (*models.MenuCategory, error) {
	category, ok := r.categories[categoryID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *category
	return &copied, nil
}

func (r *fakeMenuRepo) GetCategories(chainID, outletID *int64) ([]models.MenuCategory, error) {
	var out []models.MenuCategory
	for _, category := range r.categories {
		matchChain := chainID != nil && category.ChainID != nil && *category.ChainID == *chainID
		matchOutlet := outletID != nil && category.OutletID != nil && *category.OutletID == *outletID
		if (chainID == nil && outletID == nil) || matchChain || matchOutlet {
			out = append(out, *category)
		}
	}
	return out, nil
}

func (r *fakeMenuRepo) UpdateCategory(_ repositories.SQLExecutor, category *models.MenuCategory) error {
	if _, ok := r.categories[category.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *category
	r.categories[category.ID] = &copied
	return nil
}

func (r *fakeMenuRepo) DeleteCategory(_ repositories.SQLExecutor, categoryID int64) error {
	if _, ok := r.categories[categoryID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.categories, categoryID)
	return nil
}

func (r *fakeMenuRepo) CreateItem(_ repositories.SQLExecutor, item *models.MenuItem) (int64, error) {
	r.nextID++
	item.ID = r.nextID
	copied := *item
	r.items[item.ID] = &copied
	return item.ID, nil
}

func (r *fakeMenuRepo) GetItemByID(itemID int64) (*models.MenuItem, error) {
	item, ok := r.items[itemID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *fakeMenuRepo) GetItems(models.MenuItemFilters) ([]models.MenuItem, int, error) {
	var out []models.MenuItem
	for _, item := range r.items {
		out = append(out, *item)
	}
	return out, len(out), nil
}

func (r *fakeMenuRepo) UpdateItem(_ repositories.SQLExecutor, item *models.MenuItem) error {
	if _, ok := r.items[item.ID]; !ok {
		return repositories.ErrNotFound
	}
	copied := *item
	r.items[item.ID] = &copied
	return nil
}

func (r *fakeMenuRepo) DeleteItem(_ repositories.SQLExecutor, itemID int64) error {
	if _, ok := r.items[itemID]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.items, itemID)
	return nil
}

func (r *fakeMenuRepo) GetItemWithScope(_ repositories.SQLExecutor, itemID int64) (*models.MenuItem, *models.MenuCategory, error) {
	item, ok := r.items[itemID]
	if !ok {
		return nil, nil, repositories.ErrNotFound
	}
	category, ok := r.categories[item.CategoryID]
	if !ok {
		return nil, nil, repositories.ErrNotFound
	}
	itemCopy := *item
	categoryCopy := *category
	return &itemCopy, &categoryCopy, nil
}

// --- fake order repository ---

type fakeOrderRepo struct {
	orders map[int64]*models.Order
	items  map[int64]*models.OrderItem
	kots   map[int64]*models.KOT
	menu   *fakeMenuRepo
	nextID int64
}

func newFakeOrderRepo(menu *fakeMenuRepo) *fakeOrderRepo {
	return &fakeOrderRepo{
		orders: make(map[int64]*models.Order),
		items:  make(map[int64]*models.OrderItem),
		kots:   make(map[int64]*models.KOT),
		menu:   menu,
	}
}

func (r *fakeOrderRepo) CreateOrder(_ repositories.SQLExecutor, order *models.Order) (int64, error) {
	for _, existing := range r.orders {
		if existing.TokenNumber == order.TokenNumber {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.nextID++
	order.ID = r.nextID
	copied := *order
	r.orders[order.ID] = &copied
	return order.ID, nil
}

func (r *fakeOrderRepo) GetOrderByID(orderID int64) (*models.Order, error) {
	order, ok := r.orders[orderID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *order
	return &copied, nil
}

func (r *fakeOrderRepo) GetOrderByIDForUpdate(_ repositories.SQLExecutor, orderID int64) (*models.Order, error) {
	return r.GetOrderByID(orderID)
}

func (r *fakeOrderRepo) GetOrderByToken(tokenNumber string) (*models.Order, error) {
	for _, order := range r.orders {
		if order.TokenNumber == tokenNumber {
			copied := *order
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeOrderRepo) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	var out []models.Order
	for _, order := range r.orders {
		if filters.OutletID != nil && order.OutletID != *filters.OutletID {
			continue
		}
		if filters.Status != nil && *filters.Status != "" && order.Status != *filters.Status {
			continue
		}
		out = append(out, *order)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *fakeOrderRepo) UpdateOrderStatus(_ repositories.SQLExecutor, orderID int64, newStatus string, _ time.Time) error {
	order, ok := r.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	order.Status = newStatus
	return nil
}

func (r *fakeOrderRepo) UpdateOrderTotal(_ repositories.SQLExecutor, orderID int64, total float64, _ time.Time) error {
	order, ok := r.orders[orderID]
	if !ok {
		return repositories.ErrNotFound
	}
	order.TotalAmount = total
	return nil
}

func (r *fakeOrderRepo) LatestTokenNumber(_ repositories.SQLExecutor, outletID int64) (string, error) {
	var latest *models.Order
	for _, order := range r.orders {
		if order.OutletID != outletID {
			continue
		}
		if latest == nil || order.ID > latest.ID {
			latest = order
		}
	}
	if latest == nil {
		return "", repositories.ErrNotFound
	}
	return latest.TokenNumber, nil
}

func (r *fakeOrderRepo) CreateOrderItem(_ repositories.SQLExecutor, item *models.OrderItem) (int64, error) {
	r.nextID++
	item.ID = r.nextID
	copied := *item
	r.items[item.ID] = &copied
	return item.ID, nil
}

func (r *fakeOrderRepo) GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error) {
	var out []models.OrderItem
	for _, item := range r.items {
		if item.OrderID != orderID {
			continue
		}
		copied := *item
		if menuItem, ok := r.menu.items[item.MenuItemID]; ok {
			copied.ItemName = menuItem.Name
		}
		for _, kot := range r.kots {
			if kot.OrderItemID == item.ID {
				kotCopy := *kot
				copied.KOT = &kotCopy
				break
			}
		}
		out = append(out, copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeOrderRepo) CreateKOT(_ repositories.SQLExecutor, kot *models.KOT) (int64, error) {
	r.nextID++
	kot.ID = r.nextID
	copied := *kot
	r.kots[kot.ID] = &copied
	return kot.ID, nil
}

// joinKOT fills the read-model fields the SQL layer gets from joins.
func (r *fakeOrderRepo) joinKOT(kot models.KOT) models.KOT {
	if item, ok := r.items[kot.OrderItemID]; ok {
		kot.OrderID = item.OrderID
		kot.Quantity = item.Quantity
		kot.Notes = item.Notes
		if menuItem, ok := r.menu.items[item.MenuItemID]; ok {
			kot.ItemName = menuItem.Name
		}
		if order, ok := r.orders[item.OrderID]; ok {
			kot.OutletID = order.OutletID
		}
	}
	return kot
}

func (r *fakeOrderRepo) GetKOTByID(kotID int64) (*models.KOT, error) {
	kot, ok := r.kots[kotID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	joined := r.joinKOT(*kot)
	return &joined, nil
}

func (r *fakeOrderRepo) GetKOTByIDForUpdate(_ repositories.SQLExecutor, kotID int64) (*models.KOT, error) {
	return r.GetKOTByID(kotID)
}

func (r *fakeOrderRepo) GetKOTsByOrderID(_ repositories.SQLExecutor, orderID int64) ([]models.KOT, error) {
	var out []models.KOT
	for _, kot := range r.kots {
		joined := r.joinKOT(*kot)
		if joined.OrderID == orderID {
			out = append(out, joined)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeOrderRepo) UpdateKOTStatus(_ repositories.SQLExecutor, kotID int64, newStatus string, _ time.Time) error {
	kot, ok := r.kots[kotID]
	if !ok {
		return repositories.ErrNotFound
	}
	kot.Status = newStatus
	return nil
}

func (r *fakeOrderRepo) ListKOTs(filters models.KOTFilters) ([]models.KOT, error) {
	var out []models.KOT
	for _, kot := range r.kots {
		joined := r.joinKOT(*kot)
		if joined.OutletID != filters.OutletID {
			continue
		}
		if filters.Status != nil && *filters.Status != "" && joined.Status != *filters.Status {
			continue
		}
		out = append(out, joined)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- fake billing repository ---

type fakeBillingRepo struct {
	invoices map[int64]*models.Invoice
	payments map[int64]*models.Payment
	splits   map[int64]*models.SplitBill
	orders   *fakeOrderRepo
	nextID   int64
}

func newFakeBillingRepo(orders *fakeOrderRepo) *fakeBillingRepo {
	return &fakeBillingRepo{
		invoices: make(map[int64]*models.Invoice),
		payments: make(map[int64]*models.Payment),
		splits:   make(map[int64]*models.SplitBill),
		orders:   orders,
	}
}

func (r *fakeBillingRepo) CreateInvoice(_ repositories.SQLExecutor, invoice *models.Invoice) (int64, error) {
	for _, existing := range r.invoices {
		if existing.InvoiceNumber == invoice.InvoiceNumber {
			return 0, repositories.ErrDuplicateKey
		}
	}
	r.nextID++
	invoice.ID = r.nextID
	copied := *invoice
	r.invoices[invoice.ID] = &copied
	return invoice.ID, nil
}

func (r *fakeBillingRepo) GetInvoiceByID(invoiceID int64) (*models.Invoice, error) {
	invoice, ok := r.invoices[invoiceID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *invoice
	return &copied, nil
}

func (r *fakeBillingRepo) GetInvoiceByIDForUpdate(_ repositories.SQLExecutor, invoiceID int64) (*models.Invoice, error) {
	return r.GetInvoiceByID(invoiceID)
}

func (r *fakeBillingRepo) GetInvoicesByOrderID(orderID int64) ([]models.Invoice, error) {
	var out []models.Invoice
	for _, invoice := range r.invoices {
		if invoice.OrderID == orderID {
			out = append(out, *invoice)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBillingRepo) CountInvoicesByOrderID(_ repositories.SQLExecutor, orderID int64) (int, error) {
	count := 0
	for _, invoice := range r.invoices {
		if invoice.OrderID == orderID {
			count++
		}
	}
	return count, nil
}

func (r *fakeBillingRepo) UpdateInvoiceStatus(_ repositories.SQLExecutor, invoiceID int64, newStatus string, _ time.Time) error {
	invoice, ok := r.invoices[invoiceID]
	if !ok {
		return repositories.ErrNotFound
	}
	invoice.Status = newStatus
	return nil
}

func (r *fakeBillingRepo) LatestInvoiceNumber(_ repositories.SQLExecutor, outletID int64) (string, error) {
	var latest *models.Invoice
	for _, invoice := range r.invoices {
		order, ok := r.orders.orders[invoice.OrderID]
		if !ok || order.OutletID != outletID {
			continue
		}
		if latest == nil || invoice.ID > latest.ID {
			latest = invoice
		}
	}
	if latest == nil {
		return "", repositories.ErrNotFound
	}
	return latest.InvoiceNumber, nil
}

func (r *fakeBillingRepo) CreatePayment(_ repositories.SQLExecutor, payment *models.Payment) (int64, error) {
	r.nextID++
	payment.ID = r.nextID
	copied := *payment
	r.payments[payment.ID] = &copied
	return payment.ID, nil
}

func (r *fakeBillingRepo) GetPaymentsByInvoiceID(invoiceID int64) ([]models.Payment, error) {
	var out []models.Payment
	for _, payment := range r.payments {
		if payment.InvoiceID == invoiceID {
			out = append(out, *payment)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeBillingRepo) UpdatePaymentsStatusByInvoice(_ repositories.SQLExecutor, invoiceID int64, newStatus string, _ time.Time) error {
	for _, payment := range r.payments {
		if payment.InvoiceID == invoiceID {
			payment.Status = newStatus
		}
	}
	return nil
}

func (r *fakeBillingRepo) CreateSplitBill(_ repositories.SQLExecutor, split *models.SplitBill) (int64, error) {
	r.nextID++
	split.ID = r.nextID
	copied := *split
	r.splits[split.ID] = &copied
	return split.ID, nil
}

// --- common fixture ---

// fixture wires the engines against in-memory state. One outlet (id 1,
// chain 1, owner 10), one available table (id 1, area 1) and two
// outlet-scoped menu items (id 1 at 100.00, id 2 at 45.50).
type fixture struct {
	db       *sql.DB
	outlets  *fakeOutletRepo
	tables   *fakeTableRepo
	menu     *fakeMenuRepo
	orders   *fakeOrderRepo
	billing  *fakeBillingRepo
	notifier *fakeNotifier

	orderService   OrderService
	kotService     KOTService
	billingService BillingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	outlets := newFakeOutletRepo()
	outlets.addOutlet(1, 1, 10)

	tables := newFakeTableRepo()
	tables.addTable(1, 1, 1, models.TableStatusAvailable)

	menu := newFakeMenuRepo()
	menu.addOutletItem(1, 1, 1, 100.00)
	menu.addOutletItem(2, 1, 1, 45.50)

	orders := newFakeOrderRepo(menu)
	billing := newFakeBillingRepo(orders)
	notifier := &fakeNotifier{}
	db := newTestDB(t)

	return &fixture{
		db:       db,
		outlets:  outlets,
		tables:   tables,
		menu:     menu,
		orders:   orders,
		billing:  billing,
		notifier: notifier,

		orderService:   NewOrderService(orders, tables, menu, outlets, notifier, db),
		kotService:     NewKOTService(orders, tables, notifier, db),
		billingService: NewBillingService(billing, orders, tables, notifier, db),
	}
}

func waiterActor() Actor {
	return Actor{UserID: 20, Role: models.RoleWaiter, OutletIDs: []int64{1}}
}

func kitchenActor() Actor {
	return Actor{UserID: 21, Role: models.RoleKitchen, OutletIDs: []int64{1}}
}

func managerActor() Actor {
	return Actor{UserID: 22, Role: models.RoleManager, OutletIDs: []int64{1}}
}

func int64Ptr(v int64) *int64 { return &v }

func float64Ptr(v float64) *float64 { return &v }
