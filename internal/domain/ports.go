package domain

import "time"

// OrderIDScope — имя последовательности публичных номеров заказов.
const OrderIDScope = "Order.orderId"

// SequenceBootstrap — первое выдаваемое значение новой последовательности.
const SequenceBootstrap = 1000

// SequenceAllocator выдаёт уникальные монотонные значения именованных
// последовательностей. Выдача обязана быть атомарной на уровне хранилища:
// read-modify-write в два обращения недопустим.
type SequenceAllocator interface {
	// AllocateNext возвращает следующее значение последовательности scope.
	// Первая аллокация нового scope возвращает SequenceBootstrap.
	// При сбое записи возвращает ErrAllocationFailed.
	AllocateNext(scope string) (int64, error)
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	// Create сохраняет новый заказ вместе с позициями и историей статусов.
	Create(order Order) error
	// GetByRef возвращает заказ по внутреннему ID или публичному номеру,
	// либо ErrOrderNotFound.
	GetByRef(ref OrderRef) (Order, error)
	// SetStatus безусловно выставляет статус и атомарно дописывает запись в
	// историю, только если записи с таким статусом там ещё нет.
	// Возвращает обновлённый заказ целиком.
	SetStatus(ref OrderRef, entry StatusEntry) (Order, error)
	// List возвращает страницу заказов по фильтру и общее число совпадений
	// независимо от окна пагинации. Сортировка: createdAt по убыванию.
	List(filter OrderFilter) ([]Order, int, error)
	// Clear удаляет все заказы. Только для сброса тестовых окружений.
	Clear() error
}

// CategoryRepository описывает требования к хранилищу категорий.
type CategoryRepository interface {
	// Create сохраняет категорию, назначая ей позицию max(order)+1.
	Create(category Category) (Category, error)
	Get(id string) (Category, error)
	// GetByName ищет категорию по точному имени.
	GetByName(name string) (Category, error)
	// List возвращает страницу категорий (сортировка по order) и общее число.
	List(filter CategoryFilter) ([]Category, int, error)
	Update(category Category) (Category, error)
	Delete(id string) (Category, error)
	// Reorder выставляет каждой перечисленной категории order = позиция+1
	// одним батчем. Не перечисленные категории не трогаются.
	Reorder(ids []string) error
}

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	Create(product Product) (Product, error)
	Get(id string) (Product, error)
	List(filter ProductFilter) ([]Product, int, error)
	Update(product Product) (Product, error)
	// Deactivate мягко удаляет товар и выкидывает его из всех корзин в одной
	// транзакции: либо применяются оба изменения, либо ни одного.
	Deactivate(id string) (Product, error)
	// ReassignCategory переводит все товары категории from в категорию to.
	ReassignCategory(fromCategoryID, toCategoryID string) error
}

// CartRepository описывает требования к хранилищу корзин.
type CartRepository interface {
	// Get возвращает корзину покупателя; отсутствие корзины — пустая корзина.
	Get(customerID string) (Cart, error)
	// Upsert сохраняет корзину целиком.
	Upsert(cart Cart) error
	// CountWithProduct возвращает число корзин, содержащих товар.
	CountWithProduct(productID string) (int, error)
}

// CustomerRepository описывает требования к хранилищу учётных записей.
type CustomerRepository interface {
	// Create сохраняет учётную запись; дубликат телефона — ErrMobileTaken.
	Create(customer Customer) (Customer, error)
	Get(id string) (Customer, error)
	GetByMobile(mobile string) (Customer, error)
	List(filter CustomerFilter) ([]Customer, int, error)
	Update(customer Customer) (Customer, error)
	// SetActive блокирует или разблокирует учётную запись.
	SetActive(id string, active bool) (Customer, error)
	Delete(id string) (Customer, error)
}

// OTPRepository хранит одноразовые коды с ограниченным сроком жизни.
type OTPRepository interface {
	// Save сохраняет код, замещая предыдущий для того же номера.
	Save(code OTPCode) error
	// Get возвращает живой код или ErrOTPExpired, если кода нет либо он истёк.
	Get(mobile string) (OTPCode, error)
	Delete(mobile string) error
	// DeleteExpired удаляет истёкшие коды батчами; возвращает число удалённых.
	DeleteExpired(before time.Time, limit int) (int, error)
}

// OutboxMessage хранит данные для публикуемого события.
type OutboxMessage struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

// OutboxStats описывает текущее состояние backlog transactional outbox.
type OutboxStats struct {
	PendingCount    int
	OldestPendingAt time.Time
}

// OutboxRepository позволяет сохранять события для последующей публикации.
type OutboxRepository interface {
	Enqueue(msg OutboxMessage) (OutboxMessage, error)
	PullPending(limit int) ([]OutboxMessage, error)
	Stats() (OutboxStats, error)
	MarkSent(id string) error
	MarkFailed(id string) error
}

// OutboxPublisher публикует события из transactional outbox.
type OutboxPublisher interface {
	// Publish передаёт событие наружу; должен быть идемпотентным.
	Publish(event OutboxMessage) error
}

// EmailAttachment — вложение письма.
type EmailAttachment struct {
	Filename    string
	Content     []byte
	ContentType string
}

// Email — транзакционное письмо.
type Email struct {
	To         string
	Subject    string
	HTML       string
	Attachment *EmailAttachment
}

// EmailSender отправляет транзакционные письма. Ошибки логируются
// отправителем и не ретраятся ядром.
type EmailSender interface {
	Send(email Email) error
}

// SMSSender доставляет короткие сообщения (OTP) на телефон.
type SMSSender interface {
	Send(to, body string) error
}

// WhatsAppSender доставляет сообщение с медиавложением в WhatsApp.
type WhatsAppSender interface {
	SendDocument(to, body, mediaURL string) error
}

// Uploader кладёт файл в объектное хранилище и возвращает публичный URL.
type Uploader interface {
	Upload(key string, data []byte, contentType string) (string, error)
}

// InvoiceRenderer отрисовывает счёт по заказу в PDF-байты.
type InvoiceRenderer interface {
	Render(order Order, customer Customer) ([]byte, error)
}
