package schema

import (
	"fmt"
	"strings"
)

// DDL creates the sample dataset tables. Statements run in order; FK targets
// are created before their referrers. The orders.status CHECK is generated
// from OrderStatuses so the two cannot drift.
var DDL = fmt.Sprintf(ddlTemplate, quotedStatusList())

func quotedStatusList() string {
	quoted := make([]string, len(OrderStatuses))
	for i, s := range OrderStatuses {
		quoted[i] = "'" + s + "'"
	}
	return strings.Join(quoted, ", ")
}

const ddlTemplate = `
CREATE TABLE IF NOT EXISTS regions (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    country TEXT NOT NULL,
    timezone TEXT
);

CREATE TABLE IF NOT EXISTS categories (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    description TEXT,
    margin_percentage REAL
);

CREATE TABLE IF NOT EXISTS sales_reps (
    id INTEGER PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT,
    phone TEXT,
    region_id INTEGER REFERENCES regions(id),
    hire_date TEXT,
    commission_rate REAL,
    is_active INTEGER DEFAULT 1
);

CREATE TABLE IF NOT EXISTS customers (
    id INTEGER PRIMARY KEY,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    email TEXT,
    phone TEXT,
    company TEXT,
    address TEXT,
    city TEXT,
    state TEXT,
    region_id INTEGER REFERENCES regions(id),
    customer_since TEXT,
    credit_limit REAL,
    is_active INTEGER DEFAULT 1
);

CREATE TABLE IF NOT EXISTS products (
    id INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    sku TEXT UNIQUE,
    category_id INTEGER REFERENCES categories(id),
    description TEXT,
    unit_price REAL NOT NULL,
    cost REAL,
    weight_kg REAL,
    stock_quantity INTEGER DEFAULT 0,
    reorder_level INTEGER DEFAULT 0,
    is_active INTEGER DEFAULT 1,
    created_date TEXT
);

CREATE TABLE IF NOT EXISTS orders (
    id INTEGER PRIMARY KEY,
    customer_id INTEGER NOT NULL REFERENCES customers(id),
    sales_rep_id INTEGER REFERENCES sales_reps(id),
    order_date TEXT NOT NULL,
    ship_date TEXT,
    delivery_date TEXT,
    status TEXT NOT NULL CHECK (status IN (%s)),
    shipping_cost REAL DEFAULT 0,
    tax_amount REAL DEFAULT 0,
    discount_amount REAL DEFAULT 0,
    notes TEXT
);

CREATE TABLE IF NOT EXISTS order_items (
    id INTEGER PRIMARY KEY,
    order_id INTEGER NOT NULL REFERENCES orders(id),
    product_id INTEGER NOT NULL REFERENCES products(id),
    quantity INTEGER NOT NULL,
    unit_price REAL NOT NULL,
    discount_percentage REAL DEFAULT 0
);
`

// Seed populates the tables with a small but joinable dataset: every region
// has customers and reps, every order has line items.
const Seed = `
INSERT INTO regions (id, name, country, timezone) VALUES
    (1, 'North', 'USA', 'America/New_York'),
    (2, 'South', 'USA', 'America/Chicago'),
    (3, 'West', 'USA', 'America/Los_Angeles'),
    (4, 'Europe', 'Germany', 'Europe/Berlin');

INSERT INTO categories (id, name, description, margin_percentage) VALUES
    (1, 'Electronics', 'Consumer electronics and accessories', 22.5),
    (2, 'Office Supplies', 'Stationery and office equipment', 38.0),
    (3, 'Furniture', 'Desks, chairs and storage', 30.0),
    (4, 'Software', 'Licenses and subscriptions', 65.0);

INSERT INTO sales_reps (id, first_name, last_name, email, phone, region_id, hire_date, commission_rate, is_active) VALUES
    (1, 'Alice', 'Nguyen', 'alice.nguyen@example.com', '555-0101', 1, '2019-03-12', 0.05, 1),
    (2, 'Marcus', 'Webb', 'marcus.webb@example.com', '555-0102', 2, '2020-07-01', 0.045, 1),
    (3, 'Priya', 'Shah', 'priya.shah@example.com', '555-0103', 3, '2018-11-20', 0.06, 1),
    (4, 'Jonas', 'Keller', 'jonas.keller@example.com', '555-0104', 4, '2021-02-15', 0.05, 1),
    (5, 'Dana', 'Ortiz', 'dana.ortiz@example.com', '555-0105', 1, '2022-06-01', 0.04, 0);

INSERT INTO customers (id, first_name, last_name, email, phone, company, address, city, state, region_id, customer_since, credit_limit, is_active) VALUES
    (1, 'Tom', 'Harris', 'tom@acme.example', '555-0201', 'Acme Corp', '1 Main St', 'Boston', 'MA', 1, '2020-01-15', 50000, 1),
    (2, 'Sara', 'Lopez', 'sara@globex.example', '555-0202', 'Globex', '22 Elm Ave', 'Austin', 'TX', 2, '2021-03-22', 75000, 1),
    (3, 'Ken', 'Tanaka', 'ken@initech.example', '555-0203', 'Initech', '9 Bay Rd', 'San Jose', 'CA', 3, '2019-08-30', 60000, 1),
    (4, 'Greta', 'Meyer', 'greta@umbrella.example', '555-0204', 'Umbrella GmbH', 'Hauptstr. 5', 'Munich', 'BY', 4, '2022-05-10', 40000, 1),
    (5, 'Olu', 'Adebayo', 'olu@stark.example', '555-0205', 'Stark Industries', '7 Oak Ln', 'New York', 'NY', 1, '2023-01-05', 100000, 1),
    (6, 'Mia', 'Chen', 'mia@wayne.example', '555-0206', 'Wayne Enterprises', '3 Pine St', 'Dallas', 'TX', 2, '2021-11-18', 85000, 0);

INSERT INTO products (id, name, sku, category_id, description, unit_price, cost, weight_kg, stock_quantity, reorder_level, is_active, created_date) VALUES
    (1, 'Wireless Mouse', 'ELEC-001', 1, 'Ergonomic wireless mouse', 29.99, 12.50, 0.1, 240, 50, 1, '2021-01-10'),
    (2, '27in Monitor', 'ELEC-002', 1, 'QHD IPS monitor', 249.99, 160.00, 5.4, 85, 20, 1, '2021-02-12'),
    (3, 'USB-C Dock', 'ELEC-003', 1, '11-port docking station', 129.99, 78.00, 0.6, 120, 30, 1, '2022-04-01'),
    (4, 'Notebook Pack', 'OFFC-001', 2, 'Pack of 5 ruled notebooks', 12.49, 4.20, 0.8, 500, 100, 1, '2020-06-15'),
    (5, 'Standing Desk', 'FURN-001', 3, 'Electric sit-stand desk', 499.00, 310.00, 32.0, 25, 5, 1, '2021-09-20'),
    (6, 'Task Chair', 'FURN-002', 3, 'Mesh-back task chair', 189.00, 95.00, 14.5, 60, 10, 1, '2021-09-20'),
    (7, 'CRM License (1yr)', 'SOFT-001', 4, 'Annual CRM subscription', 599.00, 120.00, 0.0, 9999, 0, 1, '2022-01-01'),
    (8, 'Laser Pointer', 'OFFC-002', 2, 'Presentation laser pointer', 18.99, 6.00, 0.05, 150, 25, 0, '2020-06-15');

INSERT INTO orders (id, customer_id, sales_rep_id, order_date, ship_date, delivery_date, status, shipping_cost, tax_amount, discount_amount, notes) VALUES
    (1, 1, 1, '2024-01-08', '2024-01-10', '2024-01-14', 'delivered', 15.00, 42.10, 0, NULL),
    (2, 2, 2, '2024-01-15', '2024-01-18', '2024-01-23', 'delivered', 25.00, 118.75, 50.00, 'priority customer'),
    (3, 3, 3, '2024-02-02', '2024-02-05', '2024-02-09', 'delivered', 12.50, 30.40, 0, NULL),
    (4, 4, 4, '2024-02-20', '2024-02-24', NULL, 'shipped', 35.00, 96.20, 0, NULL),
    (5, 5, 1, '2024-03-05', '2024-03-08', '2024-03-12', 'delivered', 55.00, 210.00, 100.00, 'bulk order'),
    (6, 1, 1, '2024-03-18', NULL, NULL, 'pending', 0, 0, 0, NULL),
    (7, 2, 2, '2024-04-02', '2024-04-05', '2024-04-10', 'delivered', 18.00, 57.30, 0, NULL),
    (8, 6, 2, '2024-04-15', NULL, NULL, 'pending', 0, 0, 0, 'awaiting credit check'),
    (9, 3, 3, '2024-05-01', '2024-05-03', NULL, 'shipped', 22.00, 84.90, 25.00, NULL),
    (10, 5, 5, '2024-05-20', '2024-05-23', '2024-05-28', 'delivered', 48.00, 175.60, 0, NULL);

INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, discount_percentage) VALUES
    (1, 1, 1, 4, 29.99, 0),
    (2, 1, 2, 2, 249.99, 5),
    (3, 2, 5, 2, 499.00, 10),
    (4, 2, 6, 4, 189.00, 0),
    (5, 3, 4, 20, 12.49, 0),
    (6, 3, 1, 6, 29.99, 0),
    (7, 4, 2, 4, 249.99, 0),
    (8, 4, 3, 4, 129.99, 5),
    (9, 5, 7, 5, 599.00, 15),
    (10, 6, 4, 10, 12.49, 0),
    (11, 7, 3, 3, 129.99, 0),
    (12, 7, 1, 8, 29.99, 10),
    (13, 8, 6, 2, 189.00, 0),
    (14, 9, 2, 3, 249.99, 0),
    (15, 9, 5, 1, 499.00, 0),
    (16, 10, 7, 3, 599.00, 0),
    (17, 10, 2, 2, 249.99, 0);
`
